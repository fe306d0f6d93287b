package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RatePlanTag string

const (
	PlanStandard   RatePlanTag = "standard"
	PlanDiscounted RatePlanTag = "discounted"
)

const (
	DefaultAdults   = 2
	DefaultChildren = 0
)

// SessionBooking is the booking intent saved when a visitor starts checkout.
// RoomCodes is ordered and may repeat a code: every entry is its own room.
type SessionBooking struct {
	RoomCodes            []string                   `json:"roomCodes" validate:"required,min=1,dive,room_code"`
	Checkin              time.Time                  `json:"checkin" validate:"required"`
	Checkout             time.Time                  `json:"checkout" validate:"required,gtfield=Checkin"`
	Adults               int                        `json:"adults" validate:"gte=1,lte=20"`
	Children             int                        `json:"children" validate:"gte=0,lte=20"`
	TotalPrice           decimal.Decimal            `json:"totalPrice"`
	PricePerRoom         map[string]decimal.Decimal `json:"pricePerRoom"`
	PlanPerRoom          map[string]RatePlanTag     `json:"planPerRoom" validate:"dive,keys,room_code,endkeys,plan_tag"`
	PlanLabelPerRoom     map[string]string          `json:"planLabelPerRoom"`
	ResolvedDisplayNames []string                   `json:"resolvedDisplayNames,omitempty"`
}

// ApplyDefaults fills missing occupancy and nil maps so consumers never
// have to guess.
func (b *SessionBooking) ApplyDefaults() {
	if b.Adults <= 0 {
		b.Adults = DefaultAdults
	}
	if b.Children < 0 {
		b.Children = DefaultChildren
	}
	if b.PricePerRoom == nil {
		b.PricePerRoom = map[string]decimal.Decimal{}
	}
	if b.PlanPerRoom == nil {
		b.PlanPerRoom = map[string]RatePlanTag{}
	}
	if b.PlanLabelPerRoom == nil {
		b.PlanLabelPerRoom = map[string]string{}
	}
}

// RoomPrices returns one price per entry of RoomCodes. Rooms without an
// explicit price share the total equally; each share is rounded to cents and
// the last room absorbs the remainder so the shares add up to TotalPrice.
func (b SessionBooking) RoomPrices() []decimal.Decimal {
	count := len(b.RoomCodes)
	prices := make([]decimal.Decimal, count)
	if count == 0 {
		return prices
	}

	share := b.TotalPrice.DivRound(decimal.NewFromInt(int64(count)), 2)
	lastUnpriced := -1
	allocated := decimal.Zero

	for i, code := range b.RoomCodes {
		if price, ok := b.PricePerRoom[code]; ok {
			prices[i] = price
			continue
		}

		prices[i] = share
		allocated = allocated.Add(share)
		lastUnpriced = i
	}

	if lastUnpriced >= 0 && len(b.PricePerRoom) == 0 {
		remainder := b.TotalPrice.Sub(allocated)
		prices[lastUnpriced] = prices[lastUnpriced].Add(remainder)
	}

	return prices
}

// Individual narrows the booking down to the room at index i.
func (b SessionBooking) Individual(i int) IndividualBooking {
	code := b.RoomCodes[i]
	plan := b.PlanPerRoom[code]
	if plan == "" {
		plan = PlanStandard
	}

	label := b.PlanLabelPerRoom[code]
	if label == "" {
		label = DefaultPlanLabel(plan)
	}

	var displayName string
	if i < len(b.ResolvedDisplayNames) {
		displayName = b.ResolvedDisplayNames[i]
	}

	return IndividualBooking{
		RoomCode:      code,
		RoomIndex:     i,
		Checkin:       b.Checkin,
		Checkout:      b.Checkout,
		Adults:        b.Adults,
		Children:      b.Children,
		TotalPrice:    b.TotalPrice,
		Price:         b.RoomPrices()[i],
		RatePlan:      plan,
		RatePlanLabel: label,
		DisplayName:   displayName,
	}
}

func DefaultPlanLabel(plan RatePlanTag) string {
	if plan == PlanDiscounted {
		return DiscountedRateLabel
	}

	return StandardRateLabel
}

// IndividualBooking is the per-room copy of a SessionBooking carried by a
// single line item.
type IndividualBooking struct {
	RoomCode      string          `json:"roomCode"`
	RoomIndex     int             `json:"roomIndex"`
	Checkin       time.Time       `json:"checkin"`
	Checkout      time.Time       `json:"checkout"`
	Adults        int             `json:"adults"`
	Children      int             `json:"children"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Price         decimal.Decimal `json:"price"`
	RatePlan      RatePlanTag     `json:"ratePlan"`
	RatePlanLabel string          `json:"ratePlanLabel"`
	DisplayName   string          `json:"displayName,omitempty"`
}

// StayKey groups bookings sharing the same dates.
func (b IndividualBooking) StayKey() string {
	return StayKey(b.Checkin, b.Checkout)
}

func StayKey(checkin, checkout time.Time) string {
	return checkin.Format(time.DateOnly) + "|" + checkout.Format(time.DateOnly)
}
