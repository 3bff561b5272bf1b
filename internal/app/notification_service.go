package app

import (
	"context"

	"github.com/gemhaus/marketplace-api/internal/domain"
)

// NotificationService serves the recipient-facing feed.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrMissingUserID
	}
	return s.store.ListForUser(ctx, userID)
}

// MarkRead marks a single notification read. Only the recipient may do so;
// anyone else sees not-found.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if userID == "" {
		return domain.ErrMissingUserID
	}
	if notificationID == "" {
		return domain.ErrInvalidID
	}
	return s.store.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead marks every unread notification of the user read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrMissingUserID
	}
	return s.store.MarkAllRead(ctx, userID)
}
