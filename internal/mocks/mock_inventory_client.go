package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockInventoryClient struct {
	mock.Mock
	domain.InventoryClient
}

func (m *MockInventoryClient) GetAvailableRoomTypes(
	ctx context.Context,
	query domain.AvailabilityQuery) (*domain.AvailabilityResult, error) {

	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityResult), args.Error(1)
}

func (m *MockInventoryClient) GetRoomTypes(ctx context.Context) ([]domain.RoomType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomType), args.Error(1)
}

func (m *MockInventoryClient) GetRatePlans(ctx context.Context, start, end time.Time) ([]domain.RatePlan, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePlan), args.Error(1)
}

func (m *MockInventoryClient) GetTaxesAndFees(
	ctx context.Context,
	roomTypeID string,
	start, end time.Time) ([]domain.TaxOrFee, error) {

	args := m.Called(ctx, roomTypeID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxOrFee), args.Error(1)
}

func (m *MockInventoryClient) PostReservation(
	ctx context.Context,
	req domain.ReservationRequest) (*domain.ReservationResponse, []byte, error) {

	args := m.Called(ctx, req)

	var resp *domain.ReservationResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ReservationResponse)
	}

	var raw []byte
	if args.Get(1) != nil {
		raw = args.Get(1).([]byte)
	}

	return resp, raw, args.Error(2)
}
