package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	PlaceholderProductSKU  = "room-booking-placeholder"
	PlaceholderProductName = "Room Booking"
)

type Product struct {
	ID     int64
	SKU    string
	Name   string
	Price  decimal.Decimal
	Hidden bool
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Create(ctx context.Context, product *Product) error
}
