package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// Transaction is a proposed sale awaiting buyer confirmation. A completed
// transaction implies the product is no longer available.
type Transaction struct {
	ID        string
	ProductID string
	SellerID  string
	BuyerID   string
	Status    TransactionStatus
	CreatedAt time.Time
}
