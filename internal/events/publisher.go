package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ReservationCreatedQueue = "reservation.created"
	ReservationFailedQueue  = "reservation.failed"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	ch channel
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	for _, queue := range []string{ReservationCreatedQueue, ReservationFailedQueue} {
		_, err = ch.QueueDeclare(queue, true, false, false, false, nil)
		if err != nil {
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
	}

	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishReservationCreated(ctx context.Context, event domain.ReservationEvent) error {
	return p.publish(ctx, ReservationCreatedQueue, event)
}

func (p *RabbitPublisher) PublishReservationFailed(ctx context.Context, event domain.ReservationEvent) error {
	return p.publish(ctx, ReservationFailedQueue, event)
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey string, event domain.ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Timestamp:    event.Timestamp,
			Type:         event.EventType,
			Body:         body,
		},
	)
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishReservationCreated(ctx context.Context, event domain.ReservationEvent) error {
	p.logger.Debug("reservation event dropped, no broker configured", "event", event.EventType, "order_id", event.OrderID)
	return nil
}

func (p *NoopPublisher) PublishReservationFailed(ctx context.Context, event domain.ReservationEvent) error {
	p.logger.Debug("reservation event dropped, no broker configured", "event", event.EventType, "order_id", event.OrderID)
	return nil
}
