package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const MonthCacheTTL = 30 * time.Minute

// PriceCalendar computes the cheapest available nightly price for every day
// of a month. A month is computed and cached as one unit; concurrent misses
// may compute it twice and the last write wins.
type PriceCalendar struct {
	inventory  domain.InventoryClient
	cache      redis.UniversalClient
	allowList  domain.RoomAllowList
	propertyID string
	ttl        time.Duration
	logger     *slog.Logger
}

func NewPriceCalendar(
	inventory domain.InventoryClient,
	cache redis.UniversalClient,
	allowList domain.RoomAllowList,
	propertyID string,
	logger *slog.Logger) *PriceCalendar {

	return &PriceCalendar{
		inventory:  inventory,
		cache:      cache,
		allowList:  allowList,
		propertyID: propertyID,
		ttl:        MonthCacheTTL,
		logger:     logger,
	}
}

// GetMonth returns entries keyed by YYYY-MM-DD. A day whose lookup fails is
// reported unavailable and the month is still cached.
func (c *PriceCalendar) GetMonth(
	ctx context.Context,
	year, month int,
	roomFilter string) (map[string]domain.DayPriceEntry, error) {

	year = max(year, 2000)
	month = min(max(month, 1), 12)

	key := monthPricesKey(c.propertyID, year, month, roomFilter)

	cached, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entries map[string]domain.DayPriceEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			return entries, nil
		}
		c.logger.Warn("discarding unreadable month price cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("month price cache lookup failed", "key", key, "error", err)
	}

	entries := c.scanMonth(ctx, year, time.Month(month), c.allowedRooms(roomFilter), roomFilter != "")

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	err = c.cache.Set(ctx, key, payload, c.ttl).Err()
	if err != nil {
		c.logger.Warn("failed to cache month prices", "key", key, "error", err)
	}

	return entries, nil
}

func (c *PriceCalendar) scanMonth(
	ctx context.Context,
	year int,
	month time.Month,
	allowed map[string]bool,
	filtered bool) map[string]domain.DayPriceEntry {

	entries := make(map[string]domain.DayPriceEntry)

	for day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); day.Month() == month; day = day.AddDate(0, 0, 1) {
		entry := domain.DayPriceEntry{Date: day}

		result, err := c.inventory.GetAvailableRoomTypes(ctx, domain.AvailabilityQuery{
			StartDate: day,
			EndDate:   day.AddDate(0, 0, 1),
		})
		if err != nil {
			c.logger.Warn("day availability lookup failed", "date", day.Format(time.DateOnly), "error", err)
			entries[day.Format(time.DateOnly)] = entry
			continue
		}

		var lowest *decimal.Decimal

		for _, room := range result.Rooms {
			if allowed != nil && !allowed[room.RoomTypeID] {
				continue
			}
			if room.RoomsAvailable <= 0 {
				continue
			}

			entry.Available = true
			if lowest == nil || room.Rate.LessThan(*lowest) {
				rate := room.Rate
				lowest = &rate
			}

			if filtered {
				break
			}
		}

		if lowest != nil {
			entry.LowestPrice = decimal.NewNullDecimal(*lowest)
		}

		entries[day.Format(time.DateOnly)] = entry
	}

	return entries
}

// allowedRooms returns nil when every room is allowed.
func (c *PriceCalendar) allowedRooms(roomFilter string) map[string]bool {
	if roomFilter != "" {
		return map[string]bool{roomFilter: true}
	}

	if c.allowList == nil {
		return nil
	}

	ids := c.allowList.RoomTypeIDs()
	if len(ids) == 0 {
		return nil
	}

	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}

	return allowed
}

func monthPricesKey(propertyID string, year, month int, roomFilter string) string {
	if roomFilter == "" {
		roomFilter = "all"
	}

	return fmt.Sprintf("month_prices:%s:%04d:%02d:%s", propertyID, year, month, roomFilter)
}
