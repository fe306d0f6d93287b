package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

const PaymentMethodCashOnDelivery = "cod"

type BillingDetails struct {
	FirstName string
	LastName  string
	Email     string
	Country   string
	Phone     string
}

type Order struct {
	ID                  int64
	Status              OrderStatus
	PaymentMethod       string
	Currency            string
	Total               decimal.Decimal
	Billing             BillingDetails
	Items               []OrderLineItem
	LegacyBooking       *SessionBooking
	CheckoutSessionID   string
	ReservationID       string
	ReservationStatus   string
	ReservationResponse json.RawMessage
	Notes               []OrderNote
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (o *Order) HasReservation() bool {
	return o.ReservationID != ""
}

type OrderLineItem struct {
	ID        int64
	Key       string
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	RoomIndex int
	Booking   *IndividualBooking
}

type OrderNote struct {
	ID        int64
	Note      string
	CreatedAt time.Time
}

type ReservationRecord struct {
	ReservationID string
	Status        string
	RawResponse   []byte
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*Order, error)
	SetCheckoutSession(ctx context.Context, id int64, checkoutSessionID string) error
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	// AttachReservation stores the reservation only when none is attached yet.
	AttachReservation(ctx context.Context, id int64, record ReservationRecord) error
	// RecordReservationFailure keeps the failed attempt for diagnostics
	// without touching an attached reservation.
	RecordReservationFailure(ctx context.Context, id int64, record ReservationRecord) error
	AddNote(ctx context.Context, id int64, note string) error
}
