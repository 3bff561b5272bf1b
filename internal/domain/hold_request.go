package domain

import "time"

type HoldStatus string

const (
	HoldStatusPending  HoldStatus = "pending"
	HoldStatusApproved HoldStatus = "approved"
	HoldStatusRejected HoldStatus = "rejected"
)

// HoldRequest is a buyer's request to reserve a product until EndTime,
// subject to seller approval. Status moves from pending to a terminal
// value exactly once.
type HoldRequest struct {
	ID        string
	ProductID string
	BuyerID   string
	Status    HoldStatus
	EndTime   time.Time
	CreatedAt time.Time
}
