package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/shopspring/decimal"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type availabilityProperty struct {
	PropertyID       looseString `json:"propertyID"`
	PropertyCurrency struct {
		CurrencyCode   string `json:"currencyCode"`
		CurrencySymbol string `json:"currencySymbol"`
	} `json:"propertyCurrency"`
	PropertyRooms []propertyRoom `json:"propertyRooms"`
}

type propertyRoom struct {
	RoomTypeID         looseString     `json:"roomTypeID"`
	RoomTypeName       string          `json:"roomTypeName"`
	RoomTypeNameShort  string          `json:"roomTypeNameShort"`
	RoomsAvailable     looseInt        `json:"roomsAvailable"`
	RoomRate           decimal.Decimal `json:"roomRate"`
	RatePlanNamePublic string          `json:"ratePlanNamePublic"`
	MaxGuests          looseInt        `json:"maxGuests"`
	AdultsIncluded     looseInt        `json:"adultsIncluded"`
	ChildrenIncluded   looseInt        `json:"childrenIncluded"`
}

type roomTypeRecord struct {
	RoomTypeID        looseString `json:"roomTypeID"`
	RoomTypeName      string      `json:"roomTypeName"`
	RoomTypeNameShort string      `json:"roomTypeNameShort"`
	MaxGuests         looseInt    `json:"maxGuests"`
}

type ratePlanRecord struct {
	RateID             looseString     `json:"rateID"`
	RoomTypeID         looseString     `json:"roomTypeID"`
	RatePlanNamePublic string          `json:"ratePlanNamePublic"`
	RoomRate           decimal.Decimal `json:"roomRate"`
}

type taxRecord struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
}

type reservationRecord struct {
	Success       bool        `json:"success"`
	ReservationID looseString `json:"reservationID"`
	Status        string      `json:"status"`
	Message       string      `json:"message"`
}

// looseString accepts both JSON strings and numbers. The upstream is not
// consistent about identifier types.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = looseString(num.String())

	return nil
}

type looseInt int

func (i *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*i = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*i = looseInt(math.Trunc(f))

	return nil
}

// encodeReservation flattens the request into the bracketed form encoding
// the upstream expects. Empty fields are left out.
func encodeReservation(req domain.ReservationRequest) url.Values {
	form := url.Values{}

	set := func(key, value string) {
		if value != "" {
			form.Set(key, value)
		}
	}

	set("propertyID", req.PropertyID)
	if !req.StartDate.IsZero() {
		set("startDate", req.StartDate.Format(time.DateOnly))
	}
	if !req.EndDate.IsZero() {
		set("endDate", req.EndDate.Format(time.DateOnly))
	}
	set("guestFirstName", req.GuestFirstName)
	set("guestLastName", req.GuestLastName)
	set("guestEmail", req.GuestEmail)
	set("guestCountry", req.GuestCountry)
	set("guestPhone", req.GuestPhone)
	set("sourceID", req.SourceID)
	set("paymentMethod", req.PaymentMethod)
	set("thirdPartyIdentifier", req.ThirdPartyIdentifier)
	if req.SendEmailConfirmation {
		form.Set("sendEmailConfirmation", "true")
	}

	encodeRooms(form, "rooms", req.Rooms)
	encodeRooms(form, "adults", req.Adults)
	encodeRooms(form, "children", req.Children)

	return form
}

func encodeRooms(form url.Values, field string, rooms []domain.ReservationRoom) {
	for i, room := range rooms {
		if room.RoomTypeID == "" {
			continue
		}

		form.Set(fmt.Sprintf("%s[%d][roomTypeID]", field, i), room.RoomTypeID)
		form.Set(fmt.Sprintf("%s[%d][quantity]", field, i), strconv.Itoa(room.Quantity))
	}
}
