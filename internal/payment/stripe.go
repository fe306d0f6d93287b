package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

type StripePaymentProvider struct {
	failureUrl string
	successUrl string
	currency   string
}

func NewStripePaymentProvider(failureUrl, successUrl, currency string) *StripePaymentProvider {
	return &StripePaymentProvider{
		failureUrl: failureUrl,
		successUrl: successUrl,
		currency:   strings.ToLower(currency),
	}
}

// StartPayment opens a Stripe Checkout session for the order. The order id
// travels in the session metadata and comes back on the webhook.
func (s *StripePaymentProvider) StartPayment(
	ctx context.Context,
	visitorSession string,
	order *domain.Order) (*domain.PaymentSession, error) {

	params := s.checkoutSessionParams(visitorSession, order)
	params.Context = ctx

	cs, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session for order %d: %w", order.ID, err)
	}

	return &domain.PaymentSession{ID: cs.ID, URL: cs.URL}, nil
}

// checkoutSessionParams charges one line per room at its order price.
func (s *StripePaymentProvider) checkoutSessionParams(
	visitorSession string,
	order *domain.Order) *stripe.CheckoutSessionParams {

	currency := s.currency
	if order.Currency != "" {
		currency = strings.ToLower(order.Currency)
	}

	var lineItems []*stripe.CheckoutSessionLineItemParams

	for _, item := range order.Items {
		name := domain.PlaceholderProductName
		var description string

		if booking := item.Booking; booking != nil {
			name = fmt.Sprintf("%s (%s)", roomName(booking), booking.RatePlanLabel)
			description = fmt.Sprintf(
				"Check-in: %s • Check-out: %s • Guests: %d adults, %d children",
				booking.Checkin.Format("Jan 2, 2006"),
				booking.Checkout.Format("Jan 2, 2006"),
				booking.Adults,
				booking.Children,
			)
		}

		priceCents := item.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(name),
		}
		if description != "" {
			productData.Description = stripe.String(description)
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(priceCents),
				ProductData: productData,
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	orderID := strconv.FormatInt(order.ID, 10)

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.failureUrl),
		Metadata: map[string]string{
			"order_id":   orderID,
			"session_id": visitorSession,
		},
		ClientReferenceID: stripe.String(orderID),
	}

	if order.Billing.Email != "" {
		params.CustomerEmail = stripe.String(order.Billing.Email)
	}

	return params
}

func roomName(booking *domain.IndividualBooking) string {
	if booking.DisplayName != "" {
		return booking.DisplayName
	}

	return "Room " + booking.RoomCode
}
