package model

import (
	"fmt"
	"time"

	apperrors "roomly/pkg/errors"
)

// TimeRange is a half-open interval [Start, End). A booking that ends exactly
// when another starts does not overlap it.
type TimeRange struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// NewTimeRange builds a validated range. End must be strictly after Start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

func (r TimeRange) Validate() error {
	if !r.End.After(r.Start) {
		return apperrors.Validation("End time must be after start time", map[string]any{
			"start": r.Start,
			"end":   r.End,
		})
	}
	return nil
}

// Overlaps uses strict half-open semantics: two ranges overlap iff each
// starts before the other ends.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls within [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s - %s", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
