package mocks

import (
	"context"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mock.Mock
	domain.EventPublisher
}

func (m *MockEventPublisher) PublishReservationCreated(ctx context.Context, event domain.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishReservationFailed(ctx context.Context, event domain.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
