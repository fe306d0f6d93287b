package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

// Guard re-checks, right before payment, that every booked room is still
// available for its dates.
type Guard struct {
	inventory domain.InventoryClient
	logger    *slog.Logger
}

func NewGuard(inventory domain.InventoryClient, logger *slog.Logger) *Guard {
	return &Guard{
		inventory: inventory,
		logger:    logger,
	}
}

type stayGroup struct {
	checkin  time.Time
	checkout time.Time
	codes    []string
}

// Validate returns every problem found across all date ranges. An empty
// result means payment may proceed.
func (g *Guard) Validate(ctx context.Context, bookings []domain.IndividualBooking) []domain.GuardError {
	groups := groupByStay(bookings)
	errs := make([]domain.GuardError, 0)

	for _, group := range groups {
		checkin := group.checkin.Format(time.DateOnly)
		checkout := group.checkout.Format(time.DateOnly)

		result, err := g.inventory.GetAvailableRoomTypes(ctx, domain.AvailabilityQuery{
			StartDate: group.checkin,
			EndDate:   group.checkout,
		})
		if err != nil {
			g.logger.Error("availability re-check failed",
				"checkin", checkin,
				"checkout", checkout,
				"error", err)

			errs = append(errs, domain.AvailabilityCheckFailed(checkin, checkout))
			continue
		}

		available := make(map[string]bool)
		for _, room := range result.Rooms {
			if room.RoomsAvailable > 0 && room.ShortCode != "" {
				available[room.ShortCode] = true
			}
		}

		for _, code := range group.codes {
			if !available[code] {
				g.logger.Warn("room no longer available",
					"room_code", code,
					"checkin", checkin,
					"checkout", checkout)

				errs = append(errs, domain.RoomNoLongerAvailable(code, checkin, checkout))
			}
		}
	}

	return errs
}

// groupByStay keeps the order in which date ranges and codes first appear.
// Codes are unique within a group.
func groupByStay(bookings []domain.IndividualBooking) []*stayGroup {
	index := make(map[string]*stayGroup)
	seen := make(map[string]bool)
	groups := make([]*stayGroup, 0)

	for _, b := range bookings {
		if b.RoomCode == "" || b.Checkin.IsZero() || b.Checkout.IsZero() {
			continue
		}

		key := b.StayKey()

		group, ok := index[key]
		if !ok {
			group = &stayGroup{checkin: b.Checkin, checkout: b.Checkout}
			index[key] = group
			groups = append(groups, group)
		}

		if seen[key+"|"+b.RoomCode] {
			continue
		}
		seen[key+"|"+b.RoomCode] = true

		group.codes = append(group.codes, b.RoomCode)
	}

	return groups
}
