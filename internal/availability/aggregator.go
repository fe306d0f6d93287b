package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

type SearchQuery struct {
	Checkin   time.Time
	Checkout  time.Time
	Adults    int
	Children  int
	PromoCode string
}

type SearchResult struct {
	Rooms          []domain.RoomTypeAvailability
	CurrencyCode   string
	CurrencySymbol string
}

// Aggregator collapses the per-rate-plan rows returned by the inventory into
// one record per room type.
type Aggregator struct {
	inventory domain.InventoryClient
	logger    *slog.Logger
}

func NewAggregator(inventory domain.InventoryClient, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		inventory: inventory,
		logger:    logger,
	}
}

// Search returns the bookable room types for the stay. Rates of a promo
// query are merged into the same rate set as the base rates. It returns
// domain.ErrNoRoomsFound when nothing is bookable.
func (a *Aggregator) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Adults <= 0 {
		q.Adults = domain.DefaultAdults
	}
	if q.Children < 0 {
		q.Children = domain.DefaultChildren
	}

	base, err := a.inventory.GetAvailableRoomTypes(ctx, domain.AvailabilityQuery{
		StartDate: q.Checkin,
		EndDate:   q.Checkout,
		Adults:    q.Adults,
		Children:  q.Children,
	})
	if err != nil {
		return nil, fmt.Errorf("search available rooms: %w", err)
	}

	rows := base.Rooms

	if q.PromoCode != "" {
		promo, err := a.inventory.GetAvailableRoomTypes(ctx, domain.AvailabilityQuery{
			StartDate: q.Checkin,
			EndDate:   q.Checkout,
			Adults:    q.Adults,
			Children:  q.Children,
			PromoCode: q.PromoCode,
		})
		if err != nil {
			a.logger.Warn("promo availability lookup failed, continuing with base rates",
				"promo_code", q.PromoCode,
				"error", err)
		} else {
			rows = append(rows, promo.Rooms...)
		}
	}

	rooms := Collapse(rows)
	if len(rooms) == 0 {
		return nil, domain.ErrNoRoomsFound
	}

	return &SearchResult{
		Rooms:          rooms,
		CurrencyCode:   base.CurrencyCode,
		CurrencySymbol: base.CurrencySymbol,
	}, nil
}

// DisplayNames maps short codes to full room names for the stay.
func (a *Aggregator) DisplayNames(ctx context.Context, q SearchQuery) (map[string]string, error) {
	result, err := a.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(result.Rooms))
	for _, room := range result.Rooms {
		if room.ShortCode != "" {
			names[room.ShortCode] = room.DisplayName
		}
	}

	return names, nil
}

// Collapse groups rows by room type id, keeping first-seen order. Rows
// without an id or without a free unit are dropped.
func Collapse(rows []domain.RoomTypeRate) []domain.RoomTypeAvailability {
	index := make(map[string]int)
	rooms := make([]domain.RoomTypeAvailability, 0)

	for _, row := range rows {
		if row.RoomTypeID == "" || row.RoomsAvailable <= 0 {
			continue
		}

		rate := domain.Rate{
			Price:     row.Rate,
			PlanLabel: domain.NormalizePlanLabel(row.RatePlanName),
		}

		i, ok := index[row.RoomTypeID]
		if !ok {
			index[row.RoomTypeID] = len(rooms)
			rooms = append(rooms, domain.RoomTypeAvailability{
				RoomTypeID:     row.RoomTypeID,
				ShortCode:      row.ShortCode,
				DisplayName:    row.Name,
				MaxGuests:      row.MaxGuests,
				RoomsAvailable: row.RoomsAvailable,
				Rates:          []domain.Rate{rate},
			})
			continue
		}

		room := &rooms[i]
		room.Rates = append(room.Rates, rate)
		room.RoomsAvailable = max(room.RoomsAvailable, row.RoomsAvailable)
		room.MaxGuests = max(room.MaxGuests, row.MaxGuests)
	}

	return rooms
}
