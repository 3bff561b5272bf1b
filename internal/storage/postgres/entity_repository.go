package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gemhaus/marketplace-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntityRepository mutates hold requests, transactions and products. All
// terminal transitions are guarded so they can only fire once.
type EntityRepository struct {
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

func (r *EntityRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *EntityRepository) CreateHoldRequest(ctx context.Context, hr domain.HoldRequest) error {
	const stmt = `
INSERT INTO hold_requests (id, product_id, buyer_id, status, end_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, hr.ID, hr.ProductID, hr.BuyerID, string(hr.Status), hr.EndTime, hr.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold request: %w", err)
	}
	return nil
}

func (r *EntityRepository) ResolveHoldRequest(ctx context.Context, id string, status domain.HoldStatus) (domain.HoldRequest, error) {
	const stmt = `
UPDATE hold_requests
SET status = $2
WHERE id = $1 AND status = 'pending'
RETURNING id, product_id, buyer_id, status, end_time, created_at`

	hr, err := scanHoldRequest(r.queryRow(ctx, stmt, id, string(status)))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.HoldRequest{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.HoldRequest{}, r.classifyHoldMiss(ctx, id)
		}
		return domain.HoldRequest{}, fmt.Errorf("resolve hold request: %w", err)
	}
	return hr, nil
}

func (r *EntityRepository) classifyHoldMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hold_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check hold request: %w", err)
	}
	if exists {
		return domain.ErrHoldAlreadyResolved
	}
	return domain.ErrHoldNotFound
}

func (r *EntityRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.HoldRequest, error) {
	// A product is held under its most recent approved hold. Older approved
	// rows stay behind after a release and re-hold, so any hold superseded by
	// a newer one is excluded no matter how long ago it expired.
	const query = `
SELECT hr.id, hr.product_id, hr.buyer_id, hr.status, hr.end_time, hr.created_at
FROM hold_requests hr
JOIN products p ON p.id = hr.product_id
WHERE hr.status = 'approved' AND hr.end_time <= $1 AND p.status = 'hold'
  AND NOT EXISTS (
    SELECT 1 FROM hold_requests newer
    WHERE newer.product_id = hr.product_id
      AND newer.status = 'approved'
      AND (newer.end_time > hr.end_time
        OR (newer.end_time = hr.end_time AND newer.created_at > hr.created_at))
  )
ORDER BY hr.end_time
LIMIT $2`

	rows, err := r.query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HoldRequest, 0)
	for rows.Next() {
		hr, err := scanHoldRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hold request: %w", err)
		}
		out = append(out, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	return out, nil
}

func (r *EntityRepository) CreateTransaction(ctx context.Context, tr domain.Transaction) error {
	const stmt = `
INSERT INTO transactions (id, product_id, seller_id, buyer_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, tr.ID, tr.ProductID, tr.SellerID, tr.BuyerID, string(tr.Status), tr.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *EntityRepository) ResolveTransaction(ctx context.Context, id string, status domain.TransactionStatus) (domain.Transaction, error) {
	const stmt = `
UPDATE transactions
SET status = $2
WHERE id = $1 AND status = 'pending'
RETURNING id, product_id, seller_id, buyer_id, status, created_at`

	var tr domain.Transaction
	var st string
	err := r.queryRow(ctx, stmt, id, string(status)).
		Scan(&tr.ID, &tr.ProductID, &tr.SellerID, &tr.BuyerID, &st, &tr.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Transaction{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Transaction{}, r.classifyTransactionMiss(ctx, id)
		}
		return domain.Transaction{}, fmt.Errorf("resolve transaction: %w", err)
	}
	tr.Status = domain.TransactionStatus(st)
	return tr, nil
}

func (r *EntityRepository) classifyTransactionMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check transaction: %w", err)
	}
	if exists {
		return domain.ErrTransactionAlreadyResolved
	}
	return domain.ErrTransactionNotFound
}

const productColumns = `id, seller_id, title, COALESCE(image_url, ''), status, created_at`

func (r *EntityRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getProduct(ctx, query, id)
}

func (r *EntityRepository) GetProductForUpdate(ctx context.Context, id string) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.getProduct(ctx, query, id)
}

func (r *EntityRepository) getProduct(ctx context.Context, query, id string) (domain.Product, error) {
	var p domain.Product
	var status string
	err := r.queryRow(ctx, query, id).
		Scan(&p.ID, &p.SellerID, &p.Title, &p.ImageURL, &status, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	p.Status = domain.ProductStatus(status)
	return p, nil
}

func (r *EntityRepository) UpdateProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	const stmt = `UPDATE products SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, string(status))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// HoldProduct moves an available product to hold. Reports false when the
// product exists but is no longer available, so a sale that landed since the
// hold request cannot be undone.
func (r *EntityRepository) HoldProduct(ctx context.Context, id string) (bool, error) {
	const stmt = `UPDATE products SET status = 'hold' WHERE id = $1 AND status = 'available'`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("hold product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return false, fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return false, domain.ErrProductNotFound
		}
		return false, nil
	}
	return true, nil
}

func (r *EntityRepository) ReleaseProduct(ctx context.Context, id string) (bool, error) {
	const stmt = `UPDATE products SET status = 'available' WHERE id = $1 AND status = 'hold'`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("release product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanHoldRequest(row pgx.Row) (domain.HoldRequest, error) {
	var hr domain.HoldRequest
	var status string
	if err := row.Scan(&hr.ID, &hr.ProductID, &hr.BuyerID, &status, &hr.EndTime, &hr.CreatedAt); err != nil {
		return domain.HoldRequest{}, err
	}
	hr.Status = domain.HoldStatus(status)
	return hr, nil
}

func (r *EntityRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *EntityRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *EntityRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
