package app

import (
	"context"
	"time"

	"github.com/gemhaus/marketplace-api/internal/domain"
)

// TxRunner executes fn inside a single storage transaction. Nested calls
// reuse the transaction already carried by the context.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NotificationStore persists one-way messages to users.
type NotificationStore interface {
	Get(ctx context.Context, id string) (domain.Notification, error)
	GetForUpdate(ctx context.Context, id string) (domain.Notification, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Notification, error)
	Insert(ctx context.Context, n domain.Notification) error
	// MarkActioned terminal-marks an actionable notification, rewriting its
	// type and payload. It must refuse a notification that is already
	// actioned so a second resolve can never fan out twice.
	MarkActioned(ctx context.Context, id string, typ domain.NotificationType, data domain.NotificationData) error
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// EntityStore mutates the records a resolution fans out to. Resolve methods
// only move a pending record to a terminal status and report which of
// not-found or already-resolved prevented the transition.
type EntityStore interface {
	CreateHoldRequest(ctx context.Context, hr domain.HoldRequest) error
	ResolveHoldRequest(ctx context.Context, id string, status domain.HoldStatus) (domain.HoldRequest, error)
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.HoldRequest, error)
	CreateTransaction(ctx context.Context, tr domain.Transaction) error
	ResolveTransaction(ctx context.Context, id string, status domain.TransactionStatus) (domain.Transaction, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetProductForUpdate(ctx context.Context, id string) (domain.Product, error)
	UpdateProductStatus(ctx context.Context, id string, status domain.ProductStatus) error
	// HoldProduct moves an available product to hold. Reports false when the
	// product exists but is not available, so a sale that landed after the
	// hold request cannot be undone.
	HoldProduct(ctx context.Context, id string) (bool, error)
	// ReleaseProduct returns a held product to available. Reports false when
	// the product was no longer on hold, so sweeps stay idempotent.
	ReleaseProduct(ctx context.Context, id string) (bool, error)
}

// ProfileLookup fetches display metadata for enrichment. A missing profile
// yields a zero-value Profile, never an error.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
}
