package model

import (
	"time"
)

type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Booking is the core aggregate: a room reservation held by an organizer for
// a half-open time window. Room, organizer, organization and participants are
// opaque identifiers owned by external services; this module only reads them.
type Booking struct {
	ID                string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title             string        `json:"title" bson:"title" validate:"required,min=2,max=100"`
	RoomID            string        `json:"room_id" bson:"room_id" validate:"required"`
	OrganizerID       string        `json:"organizer_id" bson:"organizer_id" validate:"required"`
	OrganizationID    string        `json:"organization_id" bson:"organization_id" validate:"required"`
	ParticipantIDs    []string      `json:"participant_ids,omitempty" bson:"participant_ids,omitempty" validate:"omitempty,dive,required"`
	ParticipantsCount int           `json:"participants_count" bson:"participants_count" validate:"required,min=1,max=200"`
	StartTime         time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime           time.Time     `json:"end_time" bson:"end_time" validate:"required"`
	IsPrivate         bool          `json:"is_private" bson:"is_private"`
	Status            BookingStatus `json:"status" bson:"status" validate:"required,oneof=active cancelled completed"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// BookingUpdate carries the mutable fields of a booking. Nil pointers and
// empty strings mean "leave unchanged".
type BookingUpdate struct {
	Title             string     `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	ParticipantsCount *int       `json:"participants_count,omitempty" validate:"omitempty,min=1,max=200"`
	ParticipantIDs    *[]string  `json:"participant_ids,omitempty"`
	IsPrivate         *bool      `json:"is_private,omitempty"`
}
