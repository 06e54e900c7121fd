package model

import (
	"time"
)

// RecurrencePattern is a weekly template: a set of weekdays plus a
// time-of-day window in "HH:MM" form, expanded into concrete bookings over a
// bounded horizon by the recurrence generator.
type RecurrencePattern struct {
	DaysOfWeek []time.Weekday `json:"days_of_week" bson:"days_of_week"`
	StartTime  string         `json:"start_time" bson:"start_time"`
	EndTime    string         `json:"end_time" bson:"end_time"`
}

// BookingLock is an advisory lock preventing two concurrent create calls from
// racing the conflict check for the same room/slot. The write path is
// check-then-insert, so the database-level unique key on the lock ID is the
// exclusion guarantee the overlap invariant depends on under concurrency.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
