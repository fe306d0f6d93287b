package domain

import (
	"context"
	"time"
)

// SynthesisTrigger names the event that asked for a reservation.
type SynthesisTrigger string

const (
	TriggerPaymentComplete SynthesisTrigger = "payment_complete"
	TriggerOrderCompleted  SynthesisTrigger = "order_completed"
	TriggerManual          SynthesisTrigger = "manual"
)

type ReservationEvent struct {
	EventID       string           `json:"eventId"`
	EventType     string           `json:"eventType"`
	OrderID       int64            `json:"orderId"`
	ReservationID string           `json:"reservationId,omitempty"`
	Trigger       SynthesisTrigger `json:"trigger"`
	RoomCodes     []string         `json:"roomCodes"`
	Reason        string           `json:"reason,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, event ReservationEvent) error
	PublishReservationFailed(ctx context.Context, event ReservationEvent) error
}

// ReservationSynthesizer turns a paid order into one upstream reservation and
// returns its identifier.
type ReservationSynthesizer interface {
	Synthesize(ctx context.Context, orderID int64, trigger SynthesisTrigger) (string, error)
}
