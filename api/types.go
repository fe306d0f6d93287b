package api

import (
	"encoding/json"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type RoomConflict struct {
	Kind     string `json:"kind"`
	RoomCode string `json:"roomCode,omitempty"`
	Checkin  string `json:"checkin"`
	Checkout string `json:"checkout"`
	Message  string `json:"message"`
}

type AvailabilityConflictResponse struct {
	Message   string         `json:"message"`
	RequestId string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Conflicts []RoomConflict `json:"conflicts"`
}

type SearchRoomsRequest struct {
	Checkin   time.Time `form:"checkin" validate:"required"`
	Checkout  time.Time `form:"checkout" validate:"required,gtfield=Checkin"`
	Adults    int       `form:"adults" validate:"gte=1,lte=20"`
	Children  int       `form:"children" validate:"gte=0,lte=20"`
	PromoCode string    `form:"promo_code" validate:"omitempty,max=64"`
}

type Rate struct {
	Price decimal.Decimal `json:"price"`
	Label string          `json:"label"`
}

type Room struct {
	RoomTypeId     string `json:"roomTypeId"`
	ShortCode      string `json:"shortCode"`
	DisplayName    string `json:"displayName"`
	MaxGuests      int    `json:"maxGuests"`
	RoomsAvailable int    `json:"roomsAvailable"`
	Standard       *Rate  `json:"standard,omitempty"`
	Discounted     *Rate  `json:"discounted,omitempty"`
}

type SearchRoomsResponse struct {
	Rooms          []Room `json:"rooms"`
	CurrencyCode   string `json:"currencyCode"`
	CurrencySymbol string `json:"currencySymbol"`
	Message        string `json:"message,omitempty"`
}

type MonthPricesRequest struct {
	Year   int    `form:"year" validate:"gte=2000,lte=2100"`
	Month  int    `form:"month" validate:"gte=1,lte=12"`
	RoomId string `form:"room_id" validate:"omitempty,max=64"`
}

type DayPrice struct {
	Date        openapi_types.Date `json:"date"`
	LowestPrice *decimal.Decimal   `json:"lowestPrice"`
	Available   bool               `json:"available"`
}

type MonthPricesResponse struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Days  []DayPrice `json:"days"`
}

type PricingRequest struct {
	RoomTypeId string    `form:"room_type_id" validate:"required,max=64"`
	Checkin    time.Time `form:"checkin" validate:"required"`
	Checkout   time.Time `form:"checkout" validate:"required,gtfield=Checkin"`
}

type RatePlan struct {
	RatePlanId string          `json:"ratePlanId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

type TaxOrFee struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
}

type PricingResponse struct {
	RoomTypeId string          `json:"roomTypeId"`
	BaseRate   decimal.Decimal `json:"baseRate"`
	RatePlans  []RatePlan      `json:"ratePlans"`
	Taxes      []TaxOrFee      `json:"taxes"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

type RoomAvailabilityRequest struct {
	RoomTypeId string    `form:"room_type_id" validate:"required,max=64"`
	Checkin    time.Time `form:"checkin" validate:"required"`
	Checkout   time.Time `form:"checkout" validate:"required,gtfield=Checkin"`
	Adults     int       `form:"adults" validate:"gte=1,lte=20"`
	Kids       int       `form:"kids" validate:"gte=0,lte=20"`
}

type RoomAvailabilityResponse struct {
	Available      bool   `json:"available"`
	RoomsAvailable int    `json:"roomsAvailable"`
	BookingUrl     string `json:"bookingUrl"`
}

type SetBookingResponse struct {
	CheckoutUrl string `json:"checkoutUrl"`
}

// SetBookingRequest is validated after conversion to domain.SessionBooking.
type SetBookingRequest struct {
	RoomCodes        []string                   `form:"room_codes"`
	Checkin          time.Time                  `form:"checkin"`
	Checkout         time.Time                  `form:"checkout"`
	Adults           int                        `form:"adults"`
	Children         int                        `form:"children"`
	TotalPrice       decimal.Decimal            `form:"total_price"`
	PricePerRoom     map[string]decimal.Decimal `form:"price_per_room"`
	PlanPerRoom      map[string]string          `form:"plan_per_room"`
	PlanLabelPerRoom map[string]string          `form:"plan_label_per_room"`
}

type RemoveCartItemRequest struct {
	ItemKey string `form:"item_key" validate:"required,max=64"`
}

type RemoveCartItemResponse struct {
	Removed   bool `json:"removed"`
	CartEmpty bool `json:"cartEmpty"`
}

type CartItem struct {
	Key           string             `json:"key"`
	RoomCode      string             `json:"roomCode"`
	DisplayName   string             `json:"displayName,omitempty"`
	Checkin       openapi_types.Date `json:"checkin"`
	Checkout      openapi_types.Date `json:"checkout"`
	Adults        int                `json:"adults"`
	Children      int                `json:"children"`
	RatePlan      string             `json:"ratePlan"`
	RatePlanLabel string             `json:"ratePlanLabel"`
	Quantity      int                `json:"quantity"`
	Price         decimal.Decimal    `json:"price"`
	LineTotal     decimal.Decimal    `json:"lineTotal"`
}

type CartResponse struct {
	Items    []CartItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type PlaceOrderRequest struct {
	FirstName     string `form:"first_name" validate:"required,max=100"`
	LastName      string `form:"last_name" validate:"required,max=100"`
	Email         string `form:"email" validate:"required,email"`
	Country       string `form:"country" validate:"required,iso3166_1_alpha2"`
	Phone         string `form:"phone" validate:"omitempty,max=32"`
	PaymentMethod string `form:"payment_method" validate:"required,max=64"`
}

type PlaceOrderResponse struct {
	OrderId       int64   `json:"orderId"`
	Status        string  `json:"status"`
	RedirectUrl   *string `json:"redirectUrl,omitempty"`
	ReservationId *string `json:"reservationId,omitempty"`
}

type OrderItem struct {
	Key           string             `json:"key"`
	RoomCode      string             `json:"roomCode"`
	RoomIndex     int                `json:"roomIndex"`
	Checkin       openapi_types.Date `json:"checkin"`
	Checkout      openapi_types.Date `json:"checkout"`
	Adults        int                `json:"adults"`
	Children      int                `json:"children"`
	RatePlan      string             `json:"ratePlan"`
	RatePlanLabel string             `json:"ratePlanLabel"`
	Price         decimal.Decimal    `json:"price"`
}

type OrderNote struct {
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderResponse struct {
	Id                  int64           `json:"id"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"paymentMethod"`
	Currency            string          `json:"currency"`
	Total               decimal.Decimal `json:"total"`
	ReservationId       *string         `json:"reservationId"`
	ReservationStatus   *string         `json:"reservationStatus"`
	ReservationResponse json.RawMessage `json:"reservationResponse,omitempty"`
	Items               []OrderItem     `json:"items"`
	Notes               []OrderNote     `json:"notes"`
	CreatedAt           time.Time       `json:"createdAt"`
}

type SynthesisResponse struct {
	OrderId       int64  `json:"orderId"`
	ReservationId string `json:"reservationId"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status       string            `json:"status"`
	SystemInfo   SystemInfo        `json:"systemInfo"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
