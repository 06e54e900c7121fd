// Package conflict decides whether a candidate time range collides with an
// existing active booking for the same room.
package conflict

import (
	"context"
	"sort"

	"roomly/pkg/model"
)

// BookingFinder is the slice of the booking repository the detector needs.
type BookingFinder interface {
	FindActiveOverlapping(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error)
}

type Detector struct {
	repo BookingFinder
}

func NewDetector(repo BookingFinder) *Detector {
	return &Detector{repo: repo}
}

// FindConflict returns the active booking for the room that overlaps rng, or
// nil when the slot is free. excludeID removes a booking from consideration,
// used when re-validating an existing booking's own range on update.
//
// The no-overlap invariant means at most one active booking should ever
// match, but backfilled or migrated data may violate it; when several match,
// the one with the earliest start time wins (ID ascending as a final
// tie-break for determinism). Pure query, no side effects.
func (d *Detector) FindConflict(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) (*model.Booking, error) {
	candidates, err := d.repo.FindActiveOverlapping(ctx, roomID, rng, excludeID)
	if err != nil {
		return nil, err
	}

	var conflicts []*model.Booking
	for _, b := range candidates {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.IsActive() {
			continue
		}
		if rng.Overlaps(b.Range()) {
			conflicts = append(conflicts, b)
		}
	}

	if len(conflicts) == 0 {
		return nil, nil
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].StartTime.Equal(conflicts[j].StartTime) {
			return conflicts[i].StartTime.Before(conflicts[j].StartTime)
		}
		return conflicts[i].ID < conflicts[j].ID
	})

	return conflicts[0], nil
}
