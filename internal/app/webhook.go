package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBytes = 65_536

// StripeWebhookHandler reacts to checkout session events. A session whose
// payment has settled moves the order to processing and creates the
// reservation. A completed session still waiting on a delayed payment method
// leaves the order pending until async_payment_succeeded arrives. The event
// is acknowledged even when the reservation fails: the failure is kept on
// the order and an operator can retry it.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("unable to read webhook body"))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		app.config.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn("rejected webhook event", "error", err)
		app.badRequestResponse(w, r, fmt.Errorf("invalid webhook signature"))
		return
	}

	logger = logger.With("event_id", event.ID, "event_type", event.Type)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionExpired,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
	default:
		logger.Debug("ignoring webhook event")
		w.WriteHeader(http.StatusOK)
		return
	}

	var checkoutSession stripe.CheckoutSession

	err = json.Unmarshal(event.Data.Raw, &checkoutSession)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("malformed checkout session payload"))
		return
	}

	order, err := app.orderForCheckoutSession(r, &checkoutSession)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Warn("no order for checkout session", "checkout_session_id", checkoutSession.ID)
			w.WriteHeader(http.StatusOK)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	logger = logger.With("order_id", order.ID)

	if event.Type == stripe.EventTypeCheckoutSessionExpired || event.Type == stripe.EventTypeCheckoutSessionAsyncPaymentFailed {
		if order.Status == domain.OrderStatusPending {
			err = app.orderRepo.UpdateStatus(r.Context(), order.ID, domain.OrderStatusCancelled)
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
			logger.Info("order cancelled, checkout session did not pay")
		}

		w.WriteHeader(http.StatusOK)
		return
	}

	if checkoutSession.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		logger.Info("checkout completed but payment not settled, order stays pending",
			"payment_status", checkoutSession.PaymentStatus)
		w.WriteHeader(http.StatusOK)
		return
	}

	if order.Status == domain.OrderStatusPending {
		err = app.orderRepo.UpdateStatus(r.Context(), order.ID, domain.OrderStatusProcessing)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	reservationID, err := app.synthesizer.Synthesize(r.Context(), order.ID, domain.TriggerPaymentComplete)
	if err != nil {
		logger.Error("reservation synthesis after payment failed", "error", err)
	} else {
		logger.Info("payment completed", "reservation_id", reservationID)
	}

	w.WriteHeader(http.StatusOK)
}

// orderForCheckoutSession finds the order by its stored session id and falls
// back to the order id carried in the session metadata.
func (app *Application) orderForCheckoutSession(r *http.Request, cs *stripe.CheckoutSession) (*domain.Order, error) {
	order, err := app.orderRepo.GetByCheckoutSessionID(r.Context(), cs.ID)
	if err == nil || !errors.Is(err, domain.ErrRecordNotFound) {
		return order, err
	}

	raw := cs.Metadata["order_id"]
	if raw == "" {
		raw = cs.ClientReferenceID
	}

	orderID, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return nil, err
	}

	return app.orderRepo.GetByID(r.Context(), orderID)
}
