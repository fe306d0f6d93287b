package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayPriceEntry holds the cheapest bookable price for a single night.
type DayPriceEntry struct {
	Date        time.Time           `json:"date"`
	LowestPrice decimal.NullDecimal `json:"lowestPrice"`
	Available   bool                `json:"available"`
}

// RoomAllowList reports which upstream room type ids have local content.
type RoomAllowList interface {
	RoomTypeIDs() []string
}
