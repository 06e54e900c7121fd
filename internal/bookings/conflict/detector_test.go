package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomly/pkg/model"
)

// Mock finder for testing
type mockBookingFinder struct {
	findActiveOverlappingFunc func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error)
}

func (m *mockBookingFinder) FindActiveOverlapping(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
	if m.findActiveOverlappingFunc != nil {
		return m.findActiveOverlappingFunc(ctx, roomID, rng, excludeID)
	}
	return nil, nil
}

func makeBooking(id string, start, end time.Time) *model.Booking {
	return &model.Booking{
		ID:        id,
		RoomID:    "room-1",
		StartTime: start,
		EndTime:   end,
		Status:    model.StatusActive,
	}
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}

func TestFindConflict_NoCandidates(t *testing.T) {
	detector := NewDetector(&mockBookingFinder{})

	rng := model.TimeRange{Start: at(t, "2026-03-10T10:00:00Z"), End: at(t, "2026-03-10T11:00:00Z")}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no conflict, got %v", got.ID)
	}
}

func TestFindConflict_SingleOverlap(t *testing.T) {
	existing := makeBooking("b1", at(t, "2026-03-10T10:00:00Z"), at(t, "2026-03-10T11:00:00Z"))
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
	})

	rng := model.TimeRange{Start: at(t, "2026-03-10T10:30:00Z"), End: at(t, "2026-03-10T11:30:00Z")}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "b1" {
		t.Errorf("expected conflict with b1, got %v", got)
	}
}

func TestFindConflict_AdjacentDoesNotConflict(t *testing.T) {
	// A booking ending exactly when the candidate starts must not match,
	// even if the repository over-returns it.
	existing := makeBooking("b1", at(t, "2026-03-10T10:00:00Z"), at(t, "2026-03-10T11:00:00Z"))
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
	})

	rng := model.TimeRange{Start: at(t, "2026-03-10T11:00:00Z"), End: at(t, "2026-03-10T12:00:00Z")}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected adjacent booking not to conflict, got %v", got.ID)
	}
}

func TestFindConflict_EarliestStartWins(t *testing.T) {
	// Multiple overlapping actives should not exist under the invariant, but
	// migrated data may contain them; earliest start wins deterministically.
	b1 := makeBooking("b-late", at(t, "2026-03-10T10:30:00Z"), at(t, "2026-03-10T11:30:00Z"))
	b2 := makeBooking("b-early", at(t, "2026-03-10T10:00:00Z"), at(t, "2026-03-10T11:00:00Z"))
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{b1, b2}, nil
		},
	})

	rng := model.TimeRange{Start: at(t, "2026-03-10T10:15:00Z"), End: at(t, "2026-03-10T11:15:00Z")}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "b-early" {
		t.Errorf("expected earliest-start booking to win, got %v", got)
	}
}

func TestFindConflict_TieBrokenByID(t *testing.T) {
	start := at(t, "2026-03-10T10:00:00Z")
	end := at(t, "2026-03-10T11:00:00Z")
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{makeBooking("bbb", start, end), makeBooking("aaa", start, end)}, nil
		},
	})

	rng := model.TimeRange{Start: start, End: end}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "aaa" {
		t.Errorf("expected ID ascending tie-break, got %v", got)
	}
}

func TestFindConflict_ExcludesOwnID(t *testing.T) {
	existing := makeBooking("self", at(t, "2026-03-10T10:00:00Z"), at(t, "2026-03-10T11:00:00Z"))
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			// Simulate a repository that does not apply the exclusion itself.
			return []*model.Booking{existing}, nil
		},
	})

	rng := model.TimeRange{Start: at(t, "2026-03-10T10:00:00Z"), End: at(t, "2026-03-10T12:00:00Z")}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected own booking to be excluded, got %v", got.ID)
	}
}

func TestFindConflict_IgnoresNonActive(t *testing.T) {
	cancelled := makeBooking("b1", at(t, "2026-03-10T10:00:00Z"), at(t, "2026-03-10T11:00:00Z"))
	cancelled.Status = model.StatusCancelled
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{cancelled}, nil
		},
	})

	rng := model.TimeRange{Start: at(t, "2026-03-10T10:30:00Z"), End: at(t, "2026-03-10T11:30:00Z")}
	got, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected cancelled booking to be ignored, got %v", got.ID)
	}
}

func TestFindConflict_RepositoryError(t *testing.T) {
	repoErr := errors.New("cursor timeout")
	detector := NewDetector(&mockBookingFinder{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, rng model.TimeRange, excludeID string) ([]*model.Booking, error) {
			return nil, repoErr
		},
	})

	rng := model.TimeRange{Start: at(t, "2026-03-10T10:00:00Z"), End: at(t, "2026-03-10T11:00:00Z")}
	_, err := detector.FindConflict(context.Background(), "room-1", rng, "")
	if !errors.Is(err, repoErr) {
		t.Errorf("expected repository error to propagate, got %v", err)
	}
}
