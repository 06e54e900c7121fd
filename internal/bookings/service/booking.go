package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/events"
	"roomly/internal/bookings/recurrence"
	"roomly/internal/bookings/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
)

// BookingService is the sole entry point the web layer calls. It receives
// already-parsed, type-checked values, delegates to the lifecycle manager
// and recurrence generator, and publishes events after successful state
// changes.
type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByOrganizer(ctx context.Context, organizerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	ListByOrganization(ctx context.Context, organizationID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	GenerateRecurring(ctx context.Context, in recurrence.GenerateInput) (*recurrence.Result, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	CancelAllForRoom(ctx context.Context, roomID string) (int64, error)
	CurrentAndNext(ctx context.Context, roomID string, now time.Time) (current, next *model.Booking, err error)
}

type bookingService struct {
	lifecycle *Lifecycle
	generator *recurrence.Generator
	repo      repository.BookingRepository
	events    events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	lifecycle *Lifecycle,
	generator *recurrence.Generator,
	repo repository.BookingRepository,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		lifecycle: lifecycle,
		generator: generator,
		repo:      repo,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	if err := s.lifecycle.Create(ctx, booking); err != nil {
		return err
	}

	if err := s.events.BookingCreated(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking.created event", "id", booking.ID, "error", err)
	}
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.lifecycle.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.events.BookingCancelled(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking.cancelled event", "id", id, "error", err)
	}
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	return s.lifecycle.Update(ctx, id, updates)
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByOrganizer(ctx context.Context, organizerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	if organizerID == "" {
		return nil, apperrors.InvalidInput("Organizer ID cannot be empty")
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.InvalidInput("Invalid booking status filter")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, err := s.repo.FindByOrganizer(ctx, organizerID, status, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListByOrganization(ctx context.Context, organizationID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	if organizationID == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.InvalidInput("Invalid booking status filter")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, err := s.repo.FindByOrganization(ctx, organizationID, status, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) GenerateRecurring(ctx context.Context, in recurrence.GenerateInput) (*recurrence.Result, error) {
	return s.generator.Generate(ctx, in)
}

func (s *bookingService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	count, err := s.lifecycle.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		if err := s.events.BookingsSwept(ctx, count, now); err != nil {
			s.cfg.Log.Warn("Failed to publish booking.swept event", "count", count, "error", err)
		}
	}
	return count, nil
}

func (s *bookingService) CancelAllForRoom(ctx context.Context, roomID string) (int64, error) {
	return s.lifecycle.CancelAllForRoom(ctx, roomID)
}

// CurrentAndNext returns the booking occupying the room right now (if any)
// and the next upcoming one within the following 24 hours; a next booking
// further out reports nil. Derived, non-authoritative view: the sweep owns
// the completed transition, so a just-ended booking may still read as
// current between sweep ticks.
func (s *bookingService) CurrentAndNext(ctx context.Context, roomID string, now time.Time) (*model.Booking, *model.Booking, error) {
	if roomID == "" {
		return nil, nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	// A day each way bounds the scan without a dedicated query.
	window := model.TimeRange{Start: now.Add(-24 * time.Hour), End: now.Add(24 * time.Hour)}

	bookings, err := s.repo.FindActiveOverlapping(ctx, roomID, window, "")
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to retrieve room bookings", err)
	}

	var current, next *model.Booking
	for _, b := range bookings {
		switch {
		case b.Range().Contains(now):
			if current == nil {
				current = b
			}
		case b.StartTime.After(now):
			if next == nil || b.StartTime.Before(next.StartTime) {
				next = b
			}
		}
	}

	return current, next, nil
}
