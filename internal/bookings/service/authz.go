package service

import "roomly/pkg/model"

// Actor is the already-authenticated caller identity handed in by the outer
// layer. Elevated is true for admin-type roles; role resolution itself
// happens upstream.
type Actor struct {
	UserID   string
	Elevated bool
}

// CanCancel reports whether the actor may cancel the booking: the organizer
// or an elevated role. Pure predicate; enforcement is the caller's job
// before invoking a mutating operation.
func CanCancel(booking *model.Booking, actor Actor) bool {
	if booking == nil {
		return false
	}
	return actor.Elevated || (actor.UserID != "" && actor.UserID == booking.OrganizerID)
}

// CanEdit mirrors CanCancel; edit rights are organizer-or-elevated as well.
func CanEdit(booking *model.Booking, actor Actor) bool {
	return CanCancel(booking, actor)
}
