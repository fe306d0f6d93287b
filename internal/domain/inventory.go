package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AvailabilityQuery struct {
	StartDate time.Time
	EndDate   time.Time
	// Adults == 0 sends no occupancy at all.
	Adults    int
	Children  int
	PromoCode string
}

// RoomTypeRate is one upstream availability row. A room type offering
// several rate plans appears once per plan.
type RoomTypeRate struct {
	RoomTypeID     string
	ShortCode      string
	Name           string
	RoomsAvailable int
	Rate           decimal.Decimal
	RatePlanName   string
	MaxGuests      int
}

type AvailabilityResult struct {
	Rooms          []RoomTypeRate
	CurrencyCode   string
	CurrencySymbol string
}

type RoomType struct {
	RoomTypeID string
	ShortCode  string
	Name       string
	MaxGuests  int
}

type RatePlan struct {
	RatePlanID string
	RoomTypeID string
	Name       string
	Price      decimal.Decimal
}

type TaxOrFee struct {
	Name        string
	Amount      decimal.Decimal
	Type        string
	Description string
}

func (t TaxOrFee) IsPercentage() bool {
	return t.Type == "percentage"
}

type ReservationRoom struct {
	RoomTypeID string
	Quantity   int
}

type ReservationRequest struct {
	PropertyID            string
	StartDate             time.Time
	EndDate               time.Time
	GuestFirstName        string
	GuestLastName         string
	GuestEmail            string
	GuestCountry          string
	GuestPhone            string
	SourceID              string
	PaymentMethod         string
	ThirdPartyIdentifier  string
	SendEmailConfirmation bool
	Rooms                 []ReservationRoom
	Adults                []ReservationRoom
	Children              []ReservationRoom
}

type ReservationResponse struct {
	Success       bool
	ReservationID string
	Status        string
	Message       string
}

// Succeeded treats a reservation id as success even when the upstream
// omitted the success flag.
func (r ReservationResponse) Succeeded() bool {
	return r.ReservationID != ""
}

type InventoryClient interface {
	GetAvailableRoomTypes(ctx context.Context, query AvailabilityQuery) (*AvailabilityResult, error)
	GetRoomTypes(ctx context.Context) ([]RoomType, error)
	GetRatePlans(ctx context.Context, start, end time.Time) ([]RatePlan, error)
	GetTaxesAndFees(ctx context.Context, roomTypeID string, start, end time.Time) ([]TaxOrFee, error)
	PostReservation(ctx context.Context, req ReservationRequest) (*ReservationResponse, []byte, error)
}
