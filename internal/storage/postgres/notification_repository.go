package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gemhaus/marketplace-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const notificationColumns = `id, user_id, type, COALESCE(product_id::text, ''), data, read, is_action_done, created_at`

func (r *NotificationRepository) Get(ctx context.Context, id string) (domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *NotificationRepository) GetForUpdate(ctx context.Context, id string) (domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *NotificationRepository) getOne(ctx context.Context, query, id string) (domain.Notification, error) {
	n, err := scanNotification(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Notification{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Notification{}, domain.ErrNotificationNotFound
		}
		return domain.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	const stmt = `
INSERT INTO notifications (id, user_id, type, product_id, data, read, is_action_done, created_at)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, FALSE, FALSE, $6)`

	payload, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	_, err = r.exec(ctx, stmt, n.ID, n.UserID, string(n.Type), n.ProductID, payload, n.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkActioned(ctx context.Context, id string, typ domain.NotificationType, data domain.NotificationData) error {
	const stmt = `
UPDATE notifications
SET is_action_done = TRUE, type = $2, data = $3
WHERE id = $1 AND is_action_done = FALSE`

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	tag, err := r.exec(ctx, stmt, id, string(typ), payload)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mark notification actioned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from a bad id.
		var exists bool
		if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check notification: %w", err)
		}
		if exists {
			return domain.ErrNotificationActioned
		}
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const stmt = `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	tag, err := r.exec(ctx, stmt, id, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	const stmt = `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`

	if _, err := r.exec(ctx, stmt, userID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func scanNotification(row pgx.Row) (domain.Notification, error) {
	var n domain.Notification
	var typ string
	var payload []byte
	if err := row.Scan(&n.ID, &n.UserID, &typ, &n.ProductID, &payload, &n.Read, &n.ActionDone, &n.CreatedAt); err != nil {
		return domain.Notification{}, err
	}
	n.Type = domain.NotificationType(typ)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &n.Data); err != nil {
			return domain.Notification{}, fmt.Errorf("unmarshal notification data: %w", err)
		}
	}
	return n, nil
}

func (r *NotificationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *NotificationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *NotificationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
