package app

import (
	"context"
	"sort"
	"time"

	"github.com/gemhaus/marketplace-api/internal/domain"
)

// fakeStores implements TxRunner, NotificationStore, EntityStore and
// ProfileLookup in memory for service tests.
type fakeStores struct {
	notifications map[string]domain.Notification
	inserted      []domain.Notification
	holds         map[string]domain.HoldRequest
	transactions  map[string]domain.Transaction
	products      map[string]domain.Product
	profiles      map[string]domain.Profile
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		notifications: make(map[string]domain.Notification),
		holds:         make(map[string]domain.HoldRequest),
		transactions:  make(map[string]domain.Transaction),
		products:      make(map[string]domain.Product),
		profiles:      make(map[string]domain.Profile),
	}
}

func (f *fakeStores) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStores) Get(_ context.Context, id string) (domain.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}
	return n, nil
}

func (f *fakeStores) GetForUpdate(ctx context.Context, id string) (domain.Notification, error) {
	return f.Get(ctx, id)
}

func (f *fakeStores) ListForUser(_ context.Context, userID string) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0)
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStores) Insert(_ context.Context, n domain.Notification) error {
	f.notifications[n.ID] = n
	f.inserted = append(f.inserted, n)
	return nil
}

func (f *fakeStores) MarkActioned(_ context.Context, id string, typ domain.NotificationType, data domain.NotificationData) error {
	n, ok := f.notifications[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	if n.ActionDone {
		return domain.ErrNotificationActioned
	}
	n.ActionDone = true
	n.Type = typ
	n.Data = data
	f.notifications[id] = n
	return nil
}

func (f *fakeStores) MarkRead(_ context.Context, id, userID string) error {
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	f.notifications[id] = n
	return nil
}

func (f *fakeStores) MarkAllRead(_ context.Context, userID string) error {
	for id, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
			f.notifications[id] = n
		}
	}
	return nil
}

func (f *fakeStores) CreateHoldRequest(_ context.Context, hr domain.HoldRequest) error {
	f.holds[hr.ID] = hr
	return nil
}

func (f *fakeStores) ResolveHoldRequest(_ context.Context, id string, status domain.HoldStatus) (domain.HoldRequest, error) {
	hr, ok := f.holds[id]
	if !ok {
		return domain.HoldRequest{}, domain.ErrHoldNotFound
	}
	if hr.Status != domain.HoldStatusPending {
		return domain.HoldRequest{}, domain.ErrHoldAlreadyResolved
	}
	hr.Status = status
	f.holds[id] = hr
	return hr, nil
}

func (f *fakeStores) ListExpiredHolds(_ context.Context, now time.Time, limit int) ([]domain.HoldRequest, error) {
	out := make([]domain.HoldRequest, 0)
	for _, hr := range f.holds {
		if hr.Status != domain.HoldStatusApproved || hr.EndTime.After(now) {
			continue
		}
		if p, ok := f.products[hr.ProductID]; !ok || p.Status != domain.ProductStatusHold {
			continue
		}
		if f.supersededHold(hr) {
			continue
		}
		out = append(out, hr)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// supersededHold reports whether a newer approved hold exists for the same
// product, matching the repository's stale-hold exclusion.
func (f *fakeStores) supersededHold(hr domain.HoldRequest) bool {
	for _, other := range f.holds {
		if other.ID == hr.ID || other.ProductID != hr.ProductID || other.Status != domain.HoldStatusApproved {
			continue
		}
		if other.EndTime.After(hr.EndTime) {
			return true
		}
		if other.EndTime.Equal(hr.EndTime) && other.CreatedAt.After(hr.CreatedAt) {
			return true
		}
	}
	return false
}

func (f *fakeStores) CreateTransaction(_ context.Context, tr domain.Transaction) error {
	f.transactions[tr.ID] = tr
	return nil
}

func (f *fakeStores) ResolveTransaction(_ context.Context, id string, status domain.TransactionStatus) (domain.Transaction, error) {
	tr, ok := f.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}
	if tr.Status != domain.TransactionStatusPending {
		return domain.Transaction{}, domain.ErrTransactionAlreadyResolved
	}
	tr.Status = status
	f.transactions[id] = tr
	return tr, nil
}

func (f *fakeStores) GetProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeStores) GetProductForUpdate(ctx context.Context, id string) (domain.Product, error) {
	return f.GetProduct(ctx, id)
}

func (f *fakeStores) UpdateProductStatus(_ context.Context, id string, status domain.ProductStatus) error {
	p, ok := f.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Status = status
	f.products[id] = p
	return nil
}

func (f *fakeStores) HoldProduct(_ context.Context, id string) (bool, error) {
	p, ok := f.products[id]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if p.Status != domain.ProductStatusAvailable {
		return false, nil
	}
	p.Status = domain.ProductStatusHold
	f.products[id] = p
	return true, nil
}

func (f *fakeStores) ReleaseProduct(_ context.Context, id string) (bool, error) {
	p, ok := f.products[id]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if p.Status != domain.ProductStatusHold {
		return false, nil
	}
	p.Status = domain.ProductStatusAvailable
	f.products[id] = p
	return true, nil
}

func (f *fakeStores) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, nil
	}
	return p, nil
}
