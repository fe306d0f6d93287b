package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/room-booking-bridge/internal/availability"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

const (
	bookingKey      = "booking"
	materializedKey = "booking_materialized"
)

type NameResolver interface {
	DisplayNames(ctx context.Context, q availability.SearchQuery) (map[string]string, error)
}

// SessionStore keeps one SessionBooking per visitor session.
type SessionStore struct {
	sessions  *scs.SessionManager
	names     NameResolver
	validator *validator.Validate
	logger    *slog.Logger
}

func NewSessionStore(
	sessions *scs.SessionManager,
	names NameResolver,
	validator *validator.Validate,
	logger *slog.Logger) *SessionStore {

	return &SessionStore{
		sessions:  sessions,
		names:     names,
		validator: validator,
		logger:    logger,
	}
}

// SetBooking replaces whatever booking the session held and re-arms
// materialization. Nothing is written when the session is missing or the
// booking is invalid.
func (s *SessionStore) SetBooking(ctx context.Context, booking domain.SessionBooking) (*domain.SessionBooking, error) {
	if !sessionLoaded(ctx, s.sessions) {
		return nil, domain.ErrSessionUnavailable
	}

	booking.ApplyDefaults()

	err := s.validator.Struct(booking)
	if err != nil {
		return nil, err
	}

	booking.ResolvedDisplayNames = s.resolveDisplayNames(ctx, booking)

	data, err := json.Marshal(booking)
	if err != nil {
		return nil, fmt.Errorf("encode session booking: %w", err)
	}

	s.sessions.Put(ctx, bookingKey, data)
	s.sessions.Put(ctx, materializedKey, false)

	return &booking, nil
}

func (s *SessionStore) resolveDisplayNames(ctx context.Context, booking domain.SessionBooking) []string {
	names, err := s.names.DisplayNames(ctx, availability.SearchQuery{
		Checkin:  booking.Checkin,
		Checkout: booking.Checkout,
		Adults:   booking.Adults,
		Children: booking.Children,
	})
	if err != nil {
		s.logger.Info("could not resolve room display names", "error", err)
		return nil
	}

	resolved := make([]string, len(booking.RoomCodes))
	for i, code := range booking.RoomCodes {
		resolved[i] = names[code]
	}

	return resolved
}

func (s *SessionStore) Get(ctx context.Context) (*domain.SessionBooking, error) {
	if !sessionLoaded(ctx, s.sessions) {
		return nil, domain.ErrSessionUnavailable
	}

	data := s.sessions.GetBytes(ctx, bookingKey)
	if len(data) == 0 {
		return nil, domain.ErrNoBooking
	}

	var booking domain.SessionBooking

	err := json.Unmarshal(data, &booking)
	if err != nil {
		return nil, fmt.Errorf("decode session booking: %w", err)
	}

	booking.ApplyDefaults()

	return &booking, nil
}

func (s *SessionStore) Materialized(ctx context.Context) bool {
	return s.sessions.GetBool(ctx, materializedKey)
}

func (s *SessionStore) MarkMaterialized(ctx context.Context) {
	s.sessions.Put(ctx, materializedKey, true)
}

func (s *SessionStore) Clear(ctx context.Context) {
	s.sessions.Remove(ctx, bookingKey)
	s.sessions.Remove(ctx, materializedKey)
}

// sessionLoaded reports whether session data was loaded into ctx. scs
// panics when it is not.
func sessionLoaded(ctx context.Context, sessions *scs.SessionManager) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	sessions.Status(ctx)

	return true
}
