package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/metinatakli/room-booking-bridge/internal/mailer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/metinatakli/room-booking-bridge/internal/reservation"

const (
	fallbackFirstName = "Guest"
	fallbackLastName  = "Checkout"
	fallbackEmail     = "guest@example.com"
	fallbackCountry   = "GB"
)

const (
	EventReservationCreated = "reservation.created"
	EventReservationFailed  = "reservation.failed"
)

type Config struct {
	PropertyID string
	SourceID   string
	OpsEmail   string
}

// Synthesizer turns a paid order into one multi-room upstream reservation.
type Synthesizer struct {
	config    Config
	orders    domain.OrderRepository
	inventory domain.InventoryClient
	resolver  *RoomResolver
	locker    Locker
	publisher domain.EventPublisher
	mailer    mailer.Mailer
	logger    *slog.Logger

	tracer  trace.Tracer
	created metric.Int64Counter
	failed  metric.Int64Counter
}

func NewSynthesizer(
	config Config,
	orders domain.OrderRepository,
	inventory domain.InventoryClient,
	resolver *RoomResolver,
	locker Locker,
	publisher domain.EventPublisher,
	mailer mailer.Mailer,
	logger *slog.Logger) (*Synthesizer, error) {

	meter := otel.Meter(instrumentationName)

	created, err := meter.Int64Counter("reservations.created",
		metric.WithDescription("Reservations created upstream"))
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter("reservations.failed",
		metric.WithDescription("Reservation attempts that failed"))
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		config:    config,
		orders:    orders,
		inventory: inventory,
		resolver:  resolver,
		locker:    locker,
		publisher: publisher,
		mailer:    mailer,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
		created:   created,
		failed:    failed,
	}, nil
}

// reservedRoom is one room of the reservation before code resolution.
type reservedRoom struct {
	code     string
	adults   int
	children int
	checkin  time.Time
	checkout time.Time
}

// Synthesize creates the reservation for the order unless one is already
// attached, in which case the attached id is returned without any upstream
// call.
func (s *Synthesizer) Synthesize(ctx context.Context, orderID int64, trigger domain.SynthesisTrigger) (string, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.synthesize", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("reservation.trigger", string(trigger)),
	))
	defer span.End()

	logger := s.logger.With("order_id", orderID, "trigger", trigger)

	unlock, err := s.locker.Lock(ctx, orderID)
	if err != nil {
		return "", err
	}
	defer unlock()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("load order %d: %w", orderID, err)
	}

	if order.HasReservation() {
		logger.Info("order already has a reservation", "reservation_id", order.ReservationID)
		return order.ReservationID, nil
	}

	rooms := collectRooms(order)
	if len(rooms) == 0 {
		s.fail(ctx, logger, order, trigger, nil, domain.ErrNoBooking.Error(), nil)
		return "", domain.ErrNoBooking
	}

	roomCodes := make([]string, len(rooms))
	for i, room := range rooms {
		roomCodes[i] = room.code
	}

	resolved := s.resolver.Resolve(ctx, roomCodes)

	req := s.buildRequest(order, rooms, resolved)
	if len(req.Rooms) == 0 {
		s.fail(ctx, logger, order, trigger, roomCodes, domain.ErrNoRoomsToReserve.Error(), nil)
		return "", domain.ErrNoRoomsToReserve
	}

	resp, raw, err := s.inventory.PostReservation(ctx, req)
	if err != nil {
		logger.Error("reservation request failed",
			"request", req,
			"response", string(raw),
			"error", err)

		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation request failed")

		s.fail(ctx, logger, order, trigger, roomCodes, err.Error(), raw)
		return "", fmt.Errorf("%w: %w", domain.ErrReservationCreateFailed, err)
	}

	if !resp.Succeeded() {
		reason := resp.Message
		if reason == "" {
			reason = "response carried no reservation id"
		}

		logger.Error("reservation was not created",
			"request", req,
			"response", string(raw))

		span.SetStatus(codes.Error, reason)

		s.fail(ctx, logger, order, trigger, roomCodes, reason, raw)
		return "", fmt.Errorf("%w: %s", domain.ErrReservationCreateFailed, reason)
	}

	err = s.orders.AttachReservation(ctx, order.ID, domain.ReservationRecord{
		ReservationID: resp.ReservationID,
		Status:        resp.Status,
		RawResponse:   raw,
	})
	if err != nil {
		if errors.Is(err, domain.ErrReservationAlreadyAttached) {
			logger.Warn("a reservation was attached concurrently",
				"orphan_reservation_id", resp.ReservationID)
		}
		return "", fmt.Errorf("attach reservation %s: %w", resp.ReservationID, err)
	}

	s.note(ctx, logger, order.ID, fmt.Sprintf("Reservation ID: %s", resp.ReservationID))

	span.SetAttributes(attribute.String("reservation.id", resp.ReservationID))
	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", string(trigger))))

	err = s.publisher.PublishReservationCreated(ctx, domain.ReservationEvent{
		EventID:       uuid.NewString(),
		EventType:     EventReservationCreated,
		OrderID:       order.ID,
		ReservationID: resp.ReservationID,
		Trigger:       trigger,
		RoomCodes:     resolvedCodes(roomCodes, resolved),
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("could not publish reservation event", "error", err)
	}

	logger.Info("reservation created",
		"reservation_id", resp.ReservationID,
		"rooms", len(req.Rooms))

	return resp.ReservationID, nil
}

// collectRooms prefers the per-item bookings and falls back to the
// order-level booking for orders whose items carry none.
func collectRooms(order *domain.Order) []reservedRoom {
	rooms := make([]reservedRoom, 0, len(order.Items))

	for _, item := range order.Items {
		var booking domain.IndividualBooking

		switch {
		case item.Booking != nil:
			booking = *item.Booking
		case order.LegacyBooking != nil && item.RoomIndex < len(order.LegacyBooking.RoomCodes):
			booking = order.LegacyBooking.Individual(item.RoomIndex)
		default:
			continue
		}

		rooms = append(rooms, fromBooking(booking))
	}

	if len(order.Items) == 0 && order.LegacyBooking != nil {
		for i := range order.LegacyBooking.RoomCodes {
			rooms = append(rooms, fromBooking(order.LegacyBooking.Individual(i)))
		}
	}

	return rooms
}

func fromBooking(b domain.IndividualBooking) reservedRoom {
	adults := b.Adults
	if adults <= 0 {
		adults = domain.DefaultAdults
	}

	return reservedRoom{
		code:     b.RoomCode,
		adults:   adults,
		children: max(b.Children, 0),
		checkin:  b.Checkin,
		checkout: b.Checkout,
	}
}

// buildRequest uses the stay dates of the first room for the whole
// reservation.
func (s *Synthesizer) buildRequest(
	order *domain.Order,
	rooms []reservedRoom,
	resolved map[string]string) domain.ReservationRequest {

	req := domain.ReservationRequest{
		PropertyID:            s.config.PropertyID,
		StartDate:             rooms[0].checkin,
		EndDate:               rooms[0].checkout,
		GuestFirstName:        orDefault(order.Billing.FirstName, fallbackFirstName),
		GuestLastName:         orDefault(order.Billing.LastName, fallbackLastName),
		GuestEmail:            orDefault(order.Billing.Email, fallbackEmail),
		GuestCountry:          orDefault(order.Billing.Country, fallbackCountry),
		GuestPhone:            strings.TrimSpace(order.Billing.Phone),
		SourceID:              s.config.SourceID,
		PaymentMethod:         PaymentMethodTag(order.PaymentMethod),
		ThirdPartyIdentifier:  fmt.Sprintf("WC-%d", order.ID),
		SendEmailConfirmation: true,
	}

	for _, room := range rooms {
		roomTypeID, ok := resolved[room.code]
		if !ok {
			continue
		}

		req.Rooms = append(req.Rooms, domain.ReservationRoom{RoomTypeID: roomTypeID, Quantity: 1})
		req.Adults = append(req.Adults, domain.ReservationRoom{RoomTypeID: roomTypeID, Quantity: room.adults})
		req.Children = append(req.Children, domain.ReservationRoom{RoomTypeID: roomTypeID, Quantity: room.children})
	}

	return req
}

func (s *Synthesizer) fail(
	ctx context.Context,
	logger *slog.Logger,
	order *domain.Order,
	trigger domain.SynthesisTrigger,
	roomCodes []string,
	reason string,
	raw []byte) {

	s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", string(trigger))))

	s.note(ctx, logger, order.ID, fmt.Sprintf("Room reservation creation failed: %s", reason))

	if len(raw) > 0 {
		err := s.orders.RecordReservationFailure(ctx, order.ID, domain.ReservationRecord{
			Status:      "failed",
			RawResponse: raw,
		})
		if err != nil {
			logger.Warn("could not store failed reservation response", "error", err)
		}
	}

	err := s.publisher.PublishReservationFailed(ctx, domain.ReservationEvent{
		EventID:   uuid.NewString(),
		EventType: EventReservationFailed,
		OrderID:   order.ID,
		Trigger:   trigger,
		RoomCodes: roomCodes,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("could not publish reservation event", "error", err)
	}

	if s.config.OpsEmail == "" {
		return
	}

	data := mailer.ReservationFailedData{
		OrderID:   order.ID,
		Reason:    reason,
		RoomCodes: roomCodes,
		Trigger:   string(trigger),
	}
	if rooms := collectRooms(order); len(rooms) > 0 {
		data.Checkin = rooms[0].checkin.Format(time.DateOnly)
		data.Checkout = rooms[0].checkout.Format(time.DateOnly)
	}

	err = s.mailer.Send(s.config.OpsEmail, mailer.ReservationFailedTemplate, data)
	if err != nil {
		logger.Warn("could not mail reservation failure alert", "error", err)
	}
}

func (s *Synthesizer) note(ctx context.Context, logger *slog.Logger, orderID int64, note string) {
	err := s.orders.AddNote(ctx, orderID, note)
	if err != nil {
		logger.Warn("could not add order note", "note", note, "error", err)
	}
}

func resolvedCodes(roomCodes []string, resolved map[string]string) []string {
	kept := make([]string, 0, len(roomCodes))
	for _, code := range roomCodes {
		if _, ok := resolved[code]; ok {
			kept = append(kept, code)
		}
	}

	return kept
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	return value
}
