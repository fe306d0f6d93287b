package mocks

import (
	"context"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSynthesizer struct {
	mock.Mock
	domain.ReservationSynthesizer
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, orderID int64, trigger domain.SynthesisTrigger) (string, error) {
	args := m.Called(ctx, orderID, trigger)
	return args.String(0), args.Error(1)
}
