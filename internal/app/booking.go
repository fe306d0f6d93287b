package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

// SetBooking stores the booking intent for the visitor. Per-room maps travel
// as price_per_room[CODE], plan_per_room[CODE] and plan_label_per_room[CODE].
func (app *Application) SetBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	input := api.SetBookingRequest{
		Adults:   domain.DefaultAdults,
		Children: domain.DefaultChildren,
	}

	err := app.decodeForm(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking := domain.SessionBooking{
		RoomCodes:        input.RoomCodes,
		Checkin:          input.Checkin,
		Checkout:         input.Checkout,
		Adults:           input.Adults,
		Children:         input.Children,
		TotalPrice:       input.TotalPrice,
		PricePerRoom:     input.PricePerRoom,
		PlanPerRoom:      make(map[string]domain.RatePlanTag, len(input.PlanPerRoom)),
		PlanLabelPerRoom: input.PlanLabelPerRoom,
	}

	for code, plan := range input.PlanPerRoom {
		booking.PlanPerRoom[code] = domain.RatePlanTag(plan)
	}

	stored, err := app.bookings.SetBooking(r.Context(), booking)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionUnavailable):
			app.sessionUnavailableResponse(w, r)
		case errors.As(err, new(validator.ValidationErrors)):
			app.failedValidationResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	logger.Info("booking stored in session",
		"rooms", stored.RoomCodes,
		"checkin", stored.Checkin.Format(time.DateOnly),
		"checkout", stored.Checkout.Format(time.DateOnly),
		"total", stored.TotalPrice.StringFixed(2))

	app.writeSuccess(w, r, http.StatusOK, api.SetBookingResponse{CheckoutUrl: app.config.Checkout.URL})
}

func (app *Application) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var input api.RemoveCartItemRequest

	err := app.decodeForm(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	removed, empty, err := app.cart.RemoveItem(r.Context(), input.ItemKey)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, api.RemoveCartItemResponse{Removed: removed, CartEmpty: empty})
}
