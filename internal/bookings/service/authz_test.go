package service

import (
	"testing"

	"roomly/pkg/model"
)

func TestCanCancel(t *testing.T) {
	booking := &model.Booking{ID: "b1", OrganizerID: "user-1"}

	tests := []struct {
		name    string
		booking *model.Booking
		actor   Actor
		allowed bool
	}{
		{name: "organizer", booking: booking, actor: Actor{UserID: "user-1"}, allowed: true},
		{name: "other user", booking: booking, actor: Actor{UserID: "user-2"}, allowed: false},
		{name: "elevated non-organizer", booking: booking, actor: Actor{UserID: "user-2", Elevated: true}, allowed: true},
		{name: "empty actor id", booking: booking, actor: Actor{}, allowed: false},
		{name: "nil booking", booking: nil, actor: Actor{UserID: "user-1", Elevated: true}, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCancel(tt.booking, tt.actor); got != tt.allowed {
				t.Errorf("CanCancel = %v, want %v", got, tt.allowed)
			}
			if got := CanEdit(tt.booking, tt.actor); got != tt.allowed {
				t.Errorf("CanEdit = %v, want %v", got, tt.allowed)
			}
		})
	}
}
