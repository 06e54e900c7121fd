// Package events publishes booking lifecycle events to Kafka. Publishing
// happens after a state change has committed and is strictly best-effort:
// a broker outage must never roll back or block a booking operation.
package events

import (
	"context"
	"time"

	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

const source = "roomly-bookings"

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingCancelled(ctx context.Context, booking *model.Booking) error
	BookingsSwept(ctx context.Context, count int, now time.Time) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, booking.RoomID, model.BookingEvent{
		Type:       model.EventBookingCreated,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, booking.RoomID, model.BookingEvent{
		Type:       model.EventBookingCancelled,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) BookingsSwept(ctx context.Context, count int, now time.Time) error {
	return p.publish(ctx, "sweep", model.BookingEvent{
		Type:       model.EventBookingsSwept,
		SweptCount: count,
		OccurredAt: now,
	})
}

func (p *kafkaPublisher) publish(ctx context.Context, key string, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NopPublisher is used when no Kafka brokers are configured.
type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *model.Booking) error   { return nil }
func (NopPublisher) BookingCancelled(context.Context, *model.Booking) error { return nil }
func (NopPublisher) BookingsSwept(context.Context, int, time.Time) error    { return nil }
