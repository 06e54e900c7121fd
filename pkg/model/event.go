package model

import "time"

// Booking lifecycle event types published to Kafka after successful state
// changes. Publishing happens outside the write transaction and is never
// allowed to roll back or block a booking state change.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingsSwept    = "booking.swept"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	Booking    *Booking  `json:"booking,omitempty"`
	SweptCount int       `json:"swept_count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
