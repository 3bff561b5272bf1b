package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gemhaus/marketplace-api/internal/app"
	"github.com/gemhaus/marketplace-api/internal/domain"
)

const userIDHeader = "X-User-ID"

// NotificationFeed is the minimal interface the feed endpoints need.
type NotificationFeed interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationResolver is the minimal interface the approve/reject
// endpoints need.
type NotificationResolver interface {
	Resolve(ctx context.Context, notificationID string, decision app.Decision, actorID string) (app.ResolveResult, error)
}

// HandleNotifications serves GET /notifications.
func HandleNotifications(feed NotificationFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		userID := r.Header.Get(userIDHeader)
		notifications, err := feed.List(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]notificationResponse, 0, len(notifications))
		for _, n := range notifications {
			resp = append(resp, toNotificationResponse(n))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleNotificationActions routes POST /notifications/read-all and
// POST /notifications/{id}/{read|approve|reject}.
func HandleNotificationActions(feed NotificationFeed, resolver NotificationResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		userID := r.Header.Get(userIDHeader)
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		switch {
		case len(parts) == 2 && parts[0] == "notifications" && parts[1] == "read-all":
			if err := feed.MarkAllRead(r.Context(), userID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case len(parts) == 3 && parts[0] == "notifications" && parts[2] == "read":
			if err := feed.MarkRead(r.Context(), parts[1], userID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case len(parts) == 3 && parts[0] == "notifications" && (parts[2] == "approve" || parts[2] == "reject"):
			decision := app.DecisionApproved
			if parts[2] == "reject" {
				decision = app.DecisionRejected
			}
			res, err := resolver.Resolve(r.Context(), parts[1], decision, userID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := resolveResponse{
				Notification: toNotificationResponse(res.Notification),
				Emitted:      toNotificationResponse(res.Emitted),
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type notificationResponse struct {
	ID         string                  `json:"id"`
	UserID     string                  `json:"user_id"`
	Type       string                  `json:"type"`
	ProductID  string                  `json:"product_id,omitempty"`
	Data       domain.NotificationData `json:"data"`
	Read       bool                    `json:"read"`
	ActionDone bool                    `json:"is_action_done"`
	CreatedAt  time.Time               `json:"created_at"`
}

type resolveResponse struct {
	Notification notificationResponse `json:"notification"`
	Emitted      notificationResponse `json:"emitted"`
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:         n.ID,
		UserID:     n.UserID,
		Type:       string(n.Type),
		ProductID:  n.ProductID,
		Data:       n.Data,
		Read:       n.Read,
		ActionDone: n.ActionDone,
		CreatedAt:  n.CreatedAt,
	}
}
