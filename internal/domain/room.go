package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StandardRateLabel   = "Standard Rate"
	DiscountedRateLabel = "Discounted Rate"
)

type Rate struct {
	Price     decimal.Decimal
	PlanLabel string
}

// RoomTypeAvailability is one upstream room type for one searched date range.
// It is built per search and never persisted.
type RoomTypeAvailability struct {
	RoomTypeID     string
	ShortCode      string
	DisplayName    string
	MaxGuests      int
	RoomsAvailable int
	Rates          []Rate
}

// Standard returns the highest priced rate. The first entry wins a tie.
func (r RoomTypeAvailability) Standard() (Rate, bool) {
	if len(r.Rates) == 0 {
		return Rate{}, false
	}

	best := r.Rates[0]
	for _, rate := range r.Rates[1:] {
		if rate.Price.GreaterThan(best.Price) {
			best = rate
		}
	}

	return best, true
}

// Discounted returns the lowest priced rate, but only when it is strictly
// cheaper than the standard rate.
func (r RoomTypeAvailability) Discounted() (Rate, bool) {
	standard, ok := r.Standard()
	if !ok {
		return Rate{}, false
	}

	lowest := r.Rates[0]
	for _, rate := range r.Rates[1:] {
		if rate.Price.LessThan(lowest.Price) {
			lowest = rate
		}
	}

	if !lowest.Price.LessThan(standard.Price) {
		return Rate{}, false
	}

	return lowest, true
}

// NormalizePlanLabel maps empty and "default" plan names to the standard label.
func NormalizePlanLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" || strings.EqualFold(trimmed, "default") {
		return StandardRateLabel
	}

	return trimmed
}
