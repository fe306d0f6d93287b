package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

// SandboxProvider skips the hosted payment page and sends the visitor straight
// to the success page. Used when no Stripe key is configured.
type SandboxProvider struct {
	successUrl string
}

func NewSandboxProvider(successUrl string) *SandboxProvider {
	return &SandboxProvider{
		successUrl: successUrl,
	}
}

// SandboxSessionID is the session id the sandbox assigns to an order, so a
// payment webhook can be replayed against it.
func SandboxSessionID(orderID int64) string {
	return fmt.Sprintf("cs_sandbox_%d", orderID)
}

func (p *SandboxProvider) StartPayment(
	_ context.Context,
	_ string,
	order *domain.Order) (*domain.PaymentSession, error) {

	target, err := url.Parse(p.successUrl)
	if err != nil {
		return nil, fmt.Errorf("sandbox success url: %w", err)
	}

	query := target.Query()
	query.Set("order_id", strconv.FormatInt(order.ID, 10))
	target.RawQuery = query.Encode()

	return &domain.PaymentSession{
		ID:  SandboxSessionID(order.ID),
		URL: target.String(),
	}, nil
}
