package domain

import "time"

type ProductStatus string

const (
	ProductStatusAvailable    ProductStatus = "available"
	ProductStatusHold         ProductStatus = "hold"
	ProductStatusNotAvailable ProductStatus = "not_available"
)

// Product is the listing view this service mutates: hold only via an
// approved hold request, not_available only via a completed transaction.
type Product struct {
	ID        string
	SellerID  string
	Title     string
	ImageURL  string
	Status    ProductStatus
	CreatedAt time.Time
}
