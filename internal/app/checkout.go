package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var errEmptyCart = errors.New("there is no cart bound to the current session")

// ViewCheckout materializes the session booking into the cart on the first
// visit and returns the cart with forced prices applied.
func (app *Application) ViewCheckout(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	materialized, err := app.materializer.Materialize(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionUnavailable):
			app.sessionUnavailableResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if materialized {
		logger.Info("session booking materialized into cart")
	}

	totals, err := app.cart.CalculateTotals(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, app.cartResponse(totals))
}

// PlaceOrder re-checks availability of every room in the cart, persists the
// order and starts payment. Cash on delivery orders complete immediately.
func (app *Application) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.PlaceOrderRequest

	err := app.decodeForm(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Country = strings.ToUpper(input.Country)

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	cart, err := app.cart.Load(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if cart.IsEmpty() {
		app.notFoundResponseWithErr(w, r, errEmptyCart)
		return
	}

	guardErrors := app.guard.Validate(r.Context(), cart.Bookings())
	if len(guardErrors) > 0 {
		logger.Warn("payment blocked by availability guard", "conflicts", len(guardErrors))
		app.availabilityConflictResponse(w, r, guardErrors)
		return
	}

	totals, err := app.cart.CalculateTotals(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	order := &domain.Order{
		Status:        domain.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		Currency:      app.config.Checkout.Currency,
		Total:         totals.Total,
		Billing: domain.BillingDetails{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Country:   input.Country,
			Phone:     input.Phone,
		},
		Items: make([]domain.OrderLineItem, len(totals.Lines)),
	}

	for i, line := range totals.Lines {
		order.Items[i] = domain.OrderLineItem{
			Key:       line.Item.Key,
			ProductID: line.Item.ProductID,
			Quantity:  line.Item.Quantity,
			Price:     line.UnitPrice,
			RoomIndex: line.Item.RoomIndex,
			Booking:   line.Item.Booking,
		}
	}

	legacy, err := app.bookings.Get(r.Context())
	switch {
	case err == nil:
		order.LegacyBooking = legacy
	case !errors.Is(err, domain.ErrNoBooking):
		logger.Warn("could not copy session booking onto order", "error", err)
	}

	err = app.orderRepo.Create(r.Context(), order)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	logger = logger.With("order_id", order.ID)
	logger.Info("order created", "total", order.Total.StringFixed(2), "payment_method", order.PaymentMethod)

	resp := api.PlaceOrderResponse{
		OrderId: order.ID,
		Status:  string(order.Status),
	}

	if order.PaymentMethod == domain.PaymentMethodCashOnDelivery {
		app.clearCheckout(r)

		err = app.orderRepo.UpdateStatus(r.Context(), order.ID, domain.OrderStatusCompleted)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		resp.Status = string(domain.OrderStatusCompleted)

		reservationID, err := app.synthesizer.Synthesize(r.Context(), order.ID, domain.TriggerOrderCompleted)
		if err != nil {
			logger.Error("reservation synthesis failed", "error", err)
		} else {
			resp.ReservationId = &reservationID
		}

		app.writeSuccess(w, r, http.StatusCreated, resp)
		return
	}

	paymentSession, err := app.paymentProvider.StartPayment(r.Context(), app.sessionToken(r), order)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.orderRepo.SetCheckoutSession(r.Context(), order.ID, paymentSession.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.clearCheckout(r)

	resp.RedirectUrl = &paymentSession.URL

	app.writeSuccess(w, r, http.StatusCreated, resp)
}

func (app *Application) clearCheckout(r *http.Request) {
	app.cart.Empty(r.Context())
	app.bookings.Clear(r.Context())
}

func (app *Application) cartResponse(totals *domain.CartTotals) api.CartResponse {
	resp := api.CartResponse{
		Items:    make([]api.CartItem, 0, len(totals.Lines)),
		Total:    totals.Total,
		Currency: app.config.Checkout.Currency,
	}

	for _, line := range totals.Lines {
		item := api.CartItem{
			Key:       line.Item.Key,
			Quantity:  line.Item.Quantity,
			Price:     line.UnitPrice,
			LineTotal: line.LineTotal,
		}

		if b := line.Item.Booking; b != nil {
			item.RoomCode = b.RoomCode
			item.DisplayName = b.DisplayName
			item.Checkin = openapi_types.Date{Time: b.Checkin}
			item.Checkout = openapi_types.Date{Time: b.Checkout}
			item.Adults = b.Adults
			item.Children = b.Children
			item.RatePlan = string(b.RatePlan)
			item.RatePlanLabel = b.RatePlanLabel
		}

		resp.Items = append(resp.Items, item)
	}

	return resp
}
