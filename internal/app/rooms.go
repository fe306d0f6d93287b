package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/availability"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

var errRoomTypeUnavailable = errors.New("the room type is not available for the selected dates")

const noRoomsMessage = "No rooms available for the selected dates."

func (app *Application) SearchRooms(w http.ResponseWriter, r *http.Request) {
	input := api.SearchRoomsRequest{
		Adults:   domain.DefaultAdults,
		Children: domain.DefaultChildren,
	}

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

	result, err := app.aggregator.Search(r.Context(), availability.SearchQuery{
		Checkin:   input.Checkin,
		Checkout:  input.Checkout,
		Adults:    input.Adults,
		Children:  input.Children,
		PromoCode: input.PromoCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoRoomsFound):
			app.writeSuccess(w, r, http.StatusOK, api.SearchRoomsResponse{
				Rooms:        []api.Room{},
				CurrencyCode: strings.ToUpper(app.config.BookingEngine.Currency),
				Message:      noRoomsMessage,
			})
		default:
			app.inventoryErrorResponse(w, r, err)
		}

		return
	}

	resp := api.SearchRoomsResponse{
		Rooms:          make([]api.Room, len(result.Rooms)),
		CurrencyCode:   result.CurrencyCode,
		CurrencySymbol: result.CurrencySymbol,
	}

	for i, room := range result.Rooms {
		resp.Rooms[i] = api.Room{
			RoomTypeId:     room.RoomTypeID,
			ShortCode:      room.ShortCode,
			DisplayName:    room.DisplayName,
			MaxGuests:      room.MaxGuests,
			RoomsAvailable: room.RoomsAvailable,
		}

		if standard, ok := room.Standard(); ok {
			resp.Rooms[i].Standard = &api.Rate{Price: standard.Price, Label: standard.PlanLabel}
		}
		if discounted, ok := room.Discounted(); ok {
			resp.Rooms[i].Discounted = &api.Rate{Price: discounted.Price, Label: discounted.PlanLabel}
		}
	}

	app.writeSuccess(w, r, http.StatusOK, resp)
}

func (app *Application) GetMonthPrices(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	input := api.MonthPricesRequest{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

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

	entries, err := app.calendar.GetMonth(r.Context(), input.Year, input.Month, input.RoomId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MonthPricesResponse{
		Year:  input.Year,
		Month: input.Month,
		Days:  make([]api.DayPrice, 0, len(entries)),
	}

	first := time.Date(input.Year, time.Month(input.Month), 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		entry, ok := entries[day.Format(time.DateOnly)]
		if !ok {
			entry = domain.DayPriceEntry{Date: day}
		}

		dayPrice := api.DayPrice{
			Date:      openapi_types.Date{Time: day},
			Available: entry.Available,
		}
		if entry.LowestPrice.Valid {
			price := entry.LowestPrice.Decimal
			dayPrice.LowestPrice = &price
		}

		resp.Days = append(resp.Days, dayPrice)
	}

	app.writeSuccess(w, r, http.StatusOK, resp)
}

func (app *Application) GetRoomPricing(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.PricingRequest

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

	result, err := app.inventory.GetAvailableRoomTypes(r.Context(), domain.AvailabilityQuery{
		StartDate: input.Checkin,
		EndDate:   input.Checkout,
	})
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	var (
		baseRate decimal.Decimal
		found    bool
	)

	for _, room := range availability.Collapse(result.Rooms) {
		if room.RoomTypeID != input.RoomTypeId {
			continue
		}

		if standard, ok := room.Standard(); ok {
			baseRate = standard.Price
			found = true
		}
		break
	}

	if !found {
		app.notFoundResponseWithErr(w, r, errRoomTypeUnavailable)
		return
	}

	resp := api.PricingResponse{
		RoomTypeId: input.RoomTypeId,
		BaseRate:   baseRate,
		RatePlans:  []api.RatePlan{},
		Taxes:      []api.TaxOrFee{},
		Total:      baseRate,
		Currency:   result.CurrencyCode,
	}

	plans, err := app.inventory.GetRatePlans(r.Context(), input.Checkin, input.Checkout)
	if err != nil {
		logger.Warn("rate plan lookup failed", "room_type_id", input.RoomTypeId, "error", err)
	}

	for _, plan := range plans {
		if plan.RoomTypeID != "" && plan.RoomTypeID != input.RoomTypeId {
			continue
		}

		resp.RatePlans = append(resp.RatePlans, api.RatePlan{
			RatePlanId: plan.RatePlanID,
			Name:       plan.Name,
			Price:      plan.Price,
		})
	}

	taxes, err := app.inventory.GetTaxesAndFees(r.Context(), input.RoomTypeId, input.Checkin, input.Checkout)
	if err != nil {
		logger.Warn("taxes and fees lookup failed", "room_type_id", input.RoomTypeId, "error", err)
	}

	for _, tax := range taxes {
		resp.Taxes = append(resp.Taxes, api.TaxOrFee{
			Name:        tax.Name,
			Amount:      tax.Amount,
			Type:        tax.Type,
			Description: tax.Description,
		})

		if tax.IsPercentage() {
			resp.Total = resp.Total.Add(baseRate.Mul(tax.Amount).Div(decimal.NewFromInt(100)))
		} else {
			resp.Total = resp.Total.Add(tax.Amount)
		}
	}

	resp.Total = resp.Total.Round(2)

	app.writeSuccess(w, r, http.StatusOK, resp)
}

func (app *Application) CheckRoomAvailability(w http.ResponseWriter, r *http.Request) {
	input := api.RoomAvailabilityRequest{
		Adults: domain.DefaultAdults,
		Kids:   domain.DefaultChildren,
	}

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

	if app.config.BookingEngine.Code == "" {
		app.logError(r, domain.ErrBookingEngineNotConfigured)
		app.errorResponse(w, r, http.StatusInternalServerError, domain.ErrBookingEngineNotConfigured.Error())
		return
	}

	result, err := app.inventory.GetAvailableRoomTypes(r.Context(), domain.AvailabilityQuery{
		StartDate: input.Checkin,
		EndDate:   input.Checkout,
		Adults:    input.Adults,
		Children:  input.Kids,
	})
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	roomsAvailable := 0
	for _, row := range result.Rooms {
		if row.RoomTypeID == input.RoomTypeId {
			roomsAvailable = max(roomsAvailable, row.RoomsAvailable)
		}
	}

	resp := api.RoomAvailabilityResponse{
		Available:      roomsAvailable > 0,
		RoomsAvailable: roomsAvailable,
		BookingUrl:     app.bookingURL(input.RoomTypeId, input.Checkin, input.Checkout, input.Adults, input.Kids),
	}

	app.writeSuccess(w, r, http.StatusOK, resp)
}
