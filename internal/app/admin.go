package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

func (app *Application) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.orderRepo.GetByID(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.writeSuccess(w, r, http.StatusOK, orderResponse(order))
}

// CompleteOrder marks the order completed, which is one of the events that
// create its reservation.
func (app *Application) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.orderRepo.UpdateStatus(r.Context(), orderID, domain.OrderStatusCompleted)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.synthesize(w, r, orderID, domain.TriggerOrderCompleted)
}

func (app *Application) SynthesizeReservation(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.synthesize(w, r, orderID, domain.TriggerManual)
}

func (app *Application) synthesize(w http.ResponseWriter, r *http.Request, orderID int64, trigger domain.SynthesisTrigger) {
	reservationID, err := app.synthesizer.Synthesize(r.Context(), orderID, trigger)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrSynthesisInProgress),
			errors.Is(err, domain.ErrNoBooking),
			errors.Is(err, domain.ErrNoRoomsToReserve),
			errors.Is(err, domain.ErrReservationAlreadyAttached):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrReservationCreateFailed),
			errors.Is(err, domain.ErrUpstreamUnavailable):
			app.logError(r, err)
			app.errorResponse(w, r, http.StatusBadGateway, err.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.writeSuccess(w, r, http.StatusOK, api.SynthesisResponse{OrderId: orderID, ReservationId: reservationID})
}

func orderIDParam(r *http.Request) (int64, error) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID < 1 {
		return 0, fmt.Errorf("invalid order ID")
	}

	return orderID, nil
}

func orderResponse(order *domain.Order) api.OrderResponse {
	resp := api.OrderResponse{
		Id:                  order.ID,
		Status:              string(order.Status),
		PaymentMethod:       order.PaymentMethod,
		Currency:            order.Currency,
		Total:               order.Total,
		ReservationResponse: order.ReservationResponse,
		Items:               make([]api.OrderItem, 0, len(order.Items)),
		Notes:               make([]api.OrderNote, 0, len(order.Notes)),
		CreatedAt:           order.CreatedAt,
	}

	if order.ReservationID != "" {
		resp.ReservationId = &order.ReservationID
	}
	if order.ReservationStatus != "" {
		resp.ReservationStatus = &order.ReservationStatus
	}

	for _, item := range order.Items {
		orderItem := api.OrderItem{
			Key:       item.Key,
			RoomIndex: item.RoomIndex,
			Price:     item.Price,
		}

		if b := item.Booking; b != nil {
			orderItem.RoomCode = b.RoomCode
			orderItem.Checkin = openapi_types.Date{Time: b.Checkin}
			orderItem.Checkout = openapi_types.Date{Time: b.Checkout}
			orderItem.Adults = b.Adults
			orderItem.Children = b.Children
			orderItem.RatePlan = string(b.RatePlan)
			orderItem.RatePlanLabel = b.RatePlanLabel
		}

		resp.Items = append(resp.Items, orderItem)
	}

	for _, note := range order.Notes {
		resp.Notes = append(resp.Notes, api.OrderNote{Note: note.Note, CreatedAt: note.CreatedAt})
	}

	return resp
}
