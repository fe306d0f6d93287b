package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	Key       string             `json:"key"`
	ProductID int64              `json:"productId"`
	Quantity  int                `json:"quantity"`
	RoomIndex int                `json:"roomIndex"`
	Booking   *IndividualBooking `json:"booking,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Remove drops the item with the given key and reports whether it existed.
func (c *Cart) Remove(key string) bool {
	for i, item := range c.Items {
		if item.Key == key {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}

	return false
}

func (c *Cart) Bookings() []IndividualBooking {
	bookings := make([]IndividualBooking, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Booking != nil {
			bookings = append(bookings, *item.Booking)
		}
	}

	return bookings
}

type CartLine struct {
	Item      CartItem
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type CartTotals struct {
	Lines []CartLine
	Total decimal.Decimal
}
