package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/metinatakli/room-booking-bridge/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type GuardTestSuite struct {
	suite.Suite
	inventory *mocks.MockInventoryClient
	guard     *Guard
}

func (s *GuardTestSuite) SetupTest() {
	s.inventory = new(mocks.MockInventoryClient)
	s.guard = NewGuard(s.inventory, discardLogger())
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardTestSuite))
}

func booking(code string, in, out time.Time) domain.IndividualBooking {
	return domain.IndividualBooking{RoomCode: code, Checkin: in, Checkout: out}
}

func (s *GuardTestSuite) TestValidate() {
	later := checkout.AddDate(0, 0, 7)

	tests := []struct {
		name       string
		bookings   []domain.IndividualBooking
		setupMocks func()
		want       []domain.GuardError
	}{
		{
			name:     "should report only the room that is gone",
			bookings: []domain.IndividualBooking{booking("A", checkin, checkout), booking("B", checkin, checkout)},
			setupMocks: func() {
				s.inventory.On("GetAvailableRoomTypes", mock.Anything, domain.AvailabilityQuery{StartDate: checkin, EndDate: checkout}).
					Return(&domain.AvailabilityResult{
						Rooms: []domain.RoomTypeRate{
							{RoomTypeID: "1", ShortCode: "A", RoomsAvailable: 1},
							{RoomTypeID: "2", ShortCode: "B", RoomsAvailable: 0},
						},
					}, nil).Once()
			},
			want: []domain.GuardError{domain.RoomNoLongerAvailable("B", "2025-07-01", "2025-07-03")},
		},
		{
			name: "should query once per date range and check duplicates once",
			bookings: []domain.IndividualBooking{
				booking("A", checkin, checkout),
				booking("A", checkin, checkout),
				booking("C", checkout, later),
			},
			setupMocks: func() {
				s.inventory.On("GetAvailableRoomTypes", mock.Anything, domain.AvailabilityQuery{StartDate: checkin, EndDate: checkout}).
					Return(&domain.AvailabilityResult{
						Rooms: []domain.RoomTypeRate{{RoomTypeID: "1", ShortCode: "A", RoomsAvailable: 2}},
					}, nil).Once()
				s.inventory.On("GetAvailableRoomTypes", mock.Anything, domain.AvailabilityQuery{StartDate: checkout, EndDate: later}).
					Return(&domain.AvailabilityResult{}, nil).Once()
			},
			want: []domain.GuardError{domain.RoomNoLongerAvailable("C", "2025-07-03", "2025-07-10")},
		},
		{
			name: "should report a failed check and keep checking other ranges",
			bookings: []domain.IndividualBooking{
				booking("A", checkin, checkout),
				booking("B", checkin, checkout),
				booking("C", checkout, later),
			},
			setupMocks: func() {
				s.inventory.On("GetAvailableRoomTypes", mock.Anything, domain.AvailabilityQuery{StartDate: checkin, EndDate: checkout}).
					Return(nil, &domain.UpstreamError{Endpoint: "/getAvailableRoomTypes", StatusCode: 504}).Once()
				s.inventory.On("GetAvailableRoomTypes", mock.Anything, domain.AvailabilityQuery{StartDate: checkout, EndDate: later}).
					Return(&domain.AvailabilityResult{}, nil).Once()
			},
			want: []domain.GuardError{
				domain.AvailabilityCheckFailed("2025-07-01", "2025-07-03"),
				domain.RoomNoLongerAvailable("C", "2025-07-03", "2025-07-10"),
			},
		},
		{
			name:       "should pass an order without bookings",
			bookings:   nil,
			setupMocks: func() {},
			want:       []domain.GuardError{},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.inventory.AssertExpectations(s.T())

			tt.setupMocks()

			got := s.guard.Validate(context.Background(), tt.bookings)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				s.Failf("errors mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
}
