package reservation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

// fallbackRoomTypeIDs is consulted only after every other source missed.
var fallbackRoomTypeIDs = map[string]string{
	"RM7": "116008102105282",
	"RM8": "116025179291849",
	"RM9": "116025401716958",
}

// ParseRoomMappings reads CODE=ID pairs separated by newlines or commas.
// Malformed pairs are skipped.
func ParseRoomMappings(text string) map[string]string {
	mappings := make(map[string]string)

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	for _, field := range fields {
		code, id, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		code = strings.TrimSpace(code)
		id = strings.TrimSpace(id)
		if code == "" || id == "" {
			continue
		}

		mappings[code] = id
	}

	return mappings
}

// RoomResolver maps short room codes to upstream room type IDs.
type RoomResolver struct {
	inventory domain.InventoryClient
	static    map[string]string
	logger    *slog.Logger
	now       func() time.Time
}

func NewRoomResolver(inventory domain.InventoryClient, static map[string]string, logger *slog.Logger) *RoomResolver {
	return &RoomResolver{
		inventory: inventory,
		static:    static,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve looks each code up in the room type listing, then in today's
// availability, then in the configured mappings and finally in the built-in
// table. Codes missing from all of them are left out of the result.
func (r *RoomResolver) Resolve(ctx context.Context, codes []string) map[string]string {
	resolved := make(map[string]string, len(codes))

	pending := r.resolveFromRoomTypes(ctx, codes, resolved)
	if len(pending) > 0 {
		pending = r.resolveFromAvailability(ctx, pending, resolved)
	}

	for _, code := range pending {
		if id, ok := r.static[code]; ok {
			resolved[code] = id
			continue
		}

		if id, ok := fallbackRoomTypeIDs[code]; ok {
			resolved[code] = id
			continue
		}

		r.logger.Warn("room code could not be resolved, dropping it from the reservation",
			"room_code", code,
			"error", domain.ErrRoomCodeUnresolved)
	}

	return resolved
}

func (r *RoomResolver) resolveFromRoomTypes(ctx context.Context, codes []string, resolved map[string]string) []string {
	roomTypes, err := r.inventory.GetRoomTypes(ctx)
	if err != nil {
		r.logger.Warn("room type listing unavailable", "error", err)
		return unresolved(codes, resolved)
	}

	byCode := make(map[string]string, len(roomTypes))
	for _, roomType := range roomTypes {
		byCode[roomType.ShortCode] = roomType.RoomTypeID
	}

	for _, code := range codes {
		if id, ok := byCode[code]; ok && id != "" {
			resolved[code] = id
		}
	}

	return unresolved(codes, resolved)
}

func (r *RoomResolver) resolveFromAvailability(ctx context.Context, codes []string, resolved map[string]string) []string {
	today := r.now().UTC().Truncate(24 * time.Hour)

	result, err := r.inventory.GetAvailableRoomTypes(ctx, domain.AvailabilityQuery{
		StartDate: today,
		EndDate:   today.AddDate(0, 0, 1),
	})
	if err != nil {
		r.logger.Warn("availability listing unavailable for room code lookup", "error", err)
		return codes
	}

	for _, code := range codes {
		for _, room := range result.Rooms {
			if room.ShortCode == code && room.RoomTypeID != "" {
				resolved[code] = room.RoomTypeID
				break
			}
		}
	}

	return unresolved(codes, resolved)
}

func unresolved(codes []string, resolved map[string]string) []string {
	var pending []string
	for _, code := range codes {
		if _, ok := resolved[code]; !ok {
			pending = append(pending, code)
		}
	}

	return pending
}
