package domain

import "errors"

var (
	ErrInvalidID                  = errors.New("invalid id")
	ErrMissingUserID              = errors.New("user id required")
	ErrInvalidDecision            = errors.New("invalid decision")
	ErrMalformedPayload           = errors.New("malformed notification payload")
	ErrNotificationNotFound       = errors.New("notification not found")
	ErrNotificationNotActionable  = errors.New("notification is not actionable")
	ErrNotificationActioned       = errors.New("notification already actioned")
	ErrNotRecipient               = errors.New("notification belongs to another user")
	ErrHoldNotFound               = errors.New("hold request not found")
	ErrHoldAlreadyResolved        = errors.New("hold request already resolved")
	ErrTransactionNotFound        = errors.New("transaction not found")
	ErrTransactionAlreadyResolved = errors.New("transaction already resolved")
	ErrProductNotFound            = errors.New("product not found")
	ErrProductUnavailable         = errors.New("product is not available")
	ErrNotProductSeller           = errors.New("product belongs to another seller")
)
