package mocks

import (
	"context"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepo struct {
	mock.Mock
	domain.OrderRepository
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) GetByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*domain.Order, error) {
	args := m.Called(ctx, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) SetCheckoutSession(ctx context.Context, id int64, checkoutSessionID string) error {
	args := m.Called(ctx, id, checkoutSessionID)
	return args.Error(0)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepo) AttachReservation(ctx context.Context, id int64, record domain.ReservationRecord) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}

func (m *MockOrderRepo) RecordReservationFailure(ctx context.Context, id int64, record domain.ReservationRecord) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}

func (m *MockOrderRepo) AddNote(ctx context.Context, id int64, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}
