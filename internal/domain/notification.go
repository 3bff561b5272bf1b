package domain

import "time"

type NotificationType string

const (
	TypeHoldRequest              NotificationType = "hold_request"
	TypeHoldRequestApproved      NotificationType = "hold_request_approved"
	TypeHoldRequestRejected      NotificationType = "hold_request_rejected"
	TypeHoldExpired              NotificationType = "hold_expired"
	TypeTransactionOffer         NotificationType = "transaction_offer"
	TypeTransactionOfferApproved NotificationType = "transaction_offer_approved"
	TypeTransactionOfferRejected NotificationType = "transaction_offer_rejected"
	TypeDealCompleted            NotificationType = "deal_completed"
	TypeDealRejected             NotificationType = "deal_rejected"
)

// Actionable reports whether a notification of this type expects an
// approve/reject decision from its recipient.
func (t NotificationType) Actionable() bool {
	return t == TypeHoldRequest || t == TypeTransactionOffer
}

// NotificationData is the typed view of the payload stored alongside a
// notification. Fields are optional; which ones are set depends on the
// notification type.
type NotificationData struct {
	Message         string `json:"message,omitempty"`
	HoldRequestID   string `json:"hold_request_id,omitempty"`
	TransactionID   string `json:"transaction_id,omitempty"`
	ProductID       string `json:"product_id,omitempty"`
	ProductTitle    string `json:"product_title,omitempty"`
	ProductImageURL string `json:"product_image_url,omitempty"`
	BuyerID         string `json:"buyer_id,omitempty"`
	SellerID        string `json:"seller_id,omitempty"`
	BuyerName       string `json:"buyer_name,omitempty"`
	BuyerAvatarURL  string `json:"buyer_avatar_url,omitempty"`
	SellerName      string `json:"seller_name,omitempty"`
	SellerAvatarURL string `json:"seller_avatar_url,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
}

// Notification is a one-way persisted message to a user. Actionable
// notifications are resolved exactly once; afterwards only Read may change.
type Notification struct {
	ID         string
	UserID     string
	Type       NotificationType
	ProductID  string
	Data       NotificationData
	Read       bool
	ActionDone bool
	CreatedAt  time.Time
}

// Resolved reports whether no further action may be taken on the
// notification. This is the only terminal gate the engine trusts.
func (n Notification) Resolved() bool {
	return !n.Type.Actionable() || n.ActionDone
}
