package mocks

import (
	"context"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) StartPayment(
	ctx context.Context,
	visitorSession string,
	order *domain.Order) (*domain.PaymentSession, error) {

	args := m.Called(ctx, visitorSession, order)

	session, _ := args.Get(0).(*domain.PaymentSession)
	return session, args.Error(1)
}
