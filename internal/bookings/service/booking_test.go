package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/recurrence"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
)

type mockPublisher struct {
	created   []*model.Booking
	cancelled []*model.Booking
	swept     []int
	err       error
}

func (m *mockPublisher) BookingCreated(_ context.Context, booking *model.Booking) error {
	m.created = append(m.created, booking)
	return m.err
}

func (m *mockPublisher) BookingCancelled(_ context.Context, booking *model.Booking) error {
	m.cancelled = append(m.cancelled, booking)
	return m.err
}

func (m *mockPublisher) BookingsSwept(_ context.Context, count int, _ time.Time) error {
	m.swept = append(m.swept, count)
	return m.err
}

func newTestService(repo *mockBookingRepo, lockRepo *mockLockRepo, publisher *mockPublisher) BookingService {
	l := newTestLifecycle(repo, lockRepo)
	l.cfg.MaxRecurrenceWeeks = 52
	gen := recurrence.NewGenerator(l, l.cfg)
	return NewBookingService(l, gen, repo, publisher, l.cfg)
}

func TestBookingServiceCreatePublishesEvent(t *testing.T) {
	publisher := &mockPublisher{}
	svc := newTestService(&mockBookingRepo{}, &mockLockRepo{}, publisher)

	start, end := slot(10, 0, 11, 0)
	booking := validBooking("room-1", start, end)

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(publisher.created) != 1 {
		t.Fatalf("expected one created event, got %d", len(publisher.created))
	}
	if publisher.created[0].ID != booking.ID {
		t.Errorf("event carries wrong booking: %q", publisher.created[0].ID)
	}
}

func TestBookingServiceCreateIgnoresPublishFailure(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("broker unavailable")}
	svc := newTestService(&mockBookingRepo{}, &mockLockRepo{}, publisher)

	start, end := slot(10, 0, 11, 0)
	if err := svc.Create(context.Background(), validBooking("room-1", start, end)); err != nil {
		t.Fatalf("publish failure must not fail the create, got %v", err)
	}
}

func TestBookingServiceCreateSkipsEventOnFailure(t *testing.T) {
	publisher := &mockPublisher{}
	svc := newTestService(&mockBookingRepo{}, &mockLockRepo{}, publisher)

	booking := validBooking("room-1", testNow.Add(-time.Hour), testNow.Add(time.Hour))
	if err := svc.Create(context.Background(), booking); err == nil {
		t.Fatal("expected validation failure")
	}
	if len(publisher.created) != 0 {
		t.Errorf("no event expected for a rejected create, got %d", len(publisher.created))
	}
}

func TestBookingServiceCancelPublishesEvent(t *testing.T) {
	start, end := slot(10, 0, 11, 0)
	stored := validBooking("room-1", start, end)
	stored.ID = "booking-1"
	stored.Status = model.StatusActive

	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			snapshot := *stored
			return &snapshot, nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, &mockLockRepo{}, publisher)

	cancelled, err := svc.Cancel(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("expected cancelled status, got %q", cancelled.Status)
	}
	if len(publisher.cancelled) != 1 {
		t.Fatalf("expected one cancelled event, got %d", len(publisher.cancelled))
	}
}

func TestBookingServiceSweepPublishesCount(t *testing.T) {
	start, end := slot(8, 0, 9, 0)
	expired := validBooking("room-1", start, end)
	expired.ID = "b1"
	expired.Status = model.StatusActive

	calls := 0
	repo := &mockBookingRepo{
		findExpiredFn: func(_ context.Context, _ time.Time, _ int) ([]*model.Booking, error) {
			calls++
			if calls == 1 {
				return []*model.Booking{expired}, nil
			}
			return nil, nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, &mockLockRepo{}, publisher)

	count, err := svc.SweepExpired(context.Background(), end.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swept, got %d", count)
	}
	if len(publisher.swept) != 1 || publisher.swept[0] != 1 {
		t.Errorf("expected swept event with count 1, got %v", publisher.swept)
	}

	// Nothing swept, nothing published.
	if _, err := svc.SweepExpired(context.Background(), end.Add(time.Hour)); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(publisher.swept) != 1 {
		t.Errorf("no event expected for an empty sweep, got %v", publisher.swept)
	}
}

func TestBookingServiceGetByID(t *testing.T) {
	start, end := slot(10, 0, 11, 0)
	stored := validBooking("room-1", start, end)
	stored.ID = "booking-1"
	stored.Status = model.StatusActive

	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Booking, error) {
			if id == "booking-1" {
				return stored, nil
			}
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockPublisher{})

	got, err := svc.GetByID(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got.ID != "booking-1" {
		t.Errorf("wrong booking returned: %q", got.ID)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for empty id, got %v", err)
	}
}

func TestBookingServiceListByOrganizer(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockBookingRepo{
		findByOrganizerFn: func(_ context.Context, organizerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockPublisher{})

	if _, err := svc.ListByOrganizer(context.Background(), "user-1", model.StatusActive, -5, -3); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotLimit <= 0 || gotOffset != 0 {
		t.Errorf("expected normalized pagination, got limit=%d offset=%d", gotLimit, gotOffset)
	}

	if _, err := svc.ListByOrganizer(context.Background(), "", "", 10, 0); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for empty organizer, got %v", err)
	}
	if _, err := svc.ListByOrganizer(context.Background(), "user-1", "bogus", 10, 0); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for bad status, got %v", err)
	}
}

func TestBookingServiceCurrentAndNext(t *testing.T) {
	now := testNow

	currentStart, currentEnd := now.Add(-30*time.Minute), now.Add(30*time.Minute)
	nextStart, nextEnd := now.Add(time.Hour), now.Add(2*time.Hour)
	laterStart, laterEnd := now.Add(3*time.Hour), now.Add(4*time.Hour)

	current := validBooking("room-1", currentStart, currentEnd)
	current.ID = "current"
	current.Status = model.StatusActive
	next := validBooking("room-1", nextStart, nextEnd)
	next.ID = "next"
	next.Status = model.StatusActive
	later := validBooking("room-1", laterStart, laterEnd)
	later.ID = "later"
	later.Status = model.StatusActive

	repo := &mockBookingRepo{
		findActiveOverlappingFn: func(_ context.Context, _ string, _ model.TimeRange, _ string) ([]*model.Booking, error) {
			return []*model.Booking{later, current, next}, nil
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockPublisher{})

	gotCurrent, gotNext, err := svc.CurrentAndNext(context.Background(), "room-1", now)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotCurrent == nil || gotCurrent.ID != "current" {
		t.Errorf("expected current booking, got %+v", gotCurrent)
	}
	if gotNext == nil || gotNext.ID != "next" {
		t.Errorf("expected earliest upcoming booking, got %+v", gotNext)
	}
}

func TestBookingServiceCurrentAndNextHorizon(t *testing.T) {
	var gotWindow model.TimeRange
	repo := &mockBookingRepo{
		findActiveOverlappingFn: func(_ context.Context, _ string, rng model.TimeRange, _ string) ([]*model.Booking, error) {
			gotWindow = rng
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockPublisher{})

	// The scan is bounded to a day each way; a booking further out is
	// outside the documented lookahead and reports nil.
	current, next, err := svc.CurrentAndNext(context.Background(), "room-1", testNow)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if current != nil || next != nil {
		t.Errorf("expected empty view, got current=%+v next=%+v", current, next)
	}
	if !gotWindow.Start.Equal(testNow.Add(-24*time.Hour)) || !gotWindow.End.Equal(testNow.Add(24*time.Hour)) {
		t.Errorf("unexpected scan window: %v - %v", gotWindow.Start, gotWindow.End)
	}
}
