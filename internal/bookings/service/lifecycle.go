package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"roomly/internal/bookings/conflict"
	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

// Lifecycle owns every booking state transition: create, update, cancel and
// the time-driven expiry sweep. All invariants are enforced here; readers and
// the HTTP layer never mutate bookings directly.
type Lifecycle struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	detector  *conflict.Detector
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewLifecycle(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	detector *conflict.Detector,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) *Lifecycle {
	return &Lifecycle{
		repo:      repo,
		lockRepo:  lockRepo,
		detector:  detector,
		validator: bookingValidator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create validates the booking, checks the slot for conflicts inside a
// transaction guarded by an advisory lock, and persists it as active.
//
// The conflict check followed by the insert is check-then-act; the advisory
// lock's unique key at the storage layer closes the race between two
// concurrent creates for the same room/slot. A duplicate-key rejection from
// the store surfaces as the same CONFLICT contract as a synchronously
// detected overlap, so callers cannot distinguish the two paths.
func (l *Lifecycle) Create(ctx context.Context, booking *model.Booking) error {
	l.applyDefaults(booking)
	l.sanitize(booking)
	if err := l.validate(booking); err != nil {
		return err
	}

	lockID, err := l.acquireSlotLock(ctx, booking.RoomID, booking.StartTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := l.releaseSlotLock(ctx, lockID); releaseErr != nil {
			l.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = l.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		conflicting, err := l.detector.FindConflict(txCtx, booking.RoomID, booking.Range(), "")
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if conflicting != nil {
			return conflictError(conflicting)
		}

		if err := l.repo.Create(txCtx, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return l.storageConflict(txCtx, booking)
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			l.cfg.Log.Info("Booking creation rejected by conflict",
				"room_id", booking.RoomID,
				"start_time", booking.StartTime,
			)
		} else {
			l.cfg.Log.Error("Failed to create booking", "error", err)
		}
		return err
	}

	l.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"organizer_id", booking.OrganizerID,
		"start_time", booking.StartTime,
	)
	return nil
}

// Cancel transitions an active booking to cancelled. Terminal bookings are
// rejected with INVALID_STATE and left unchanged.
func (l *Lifecycle) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := l.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != model.StatusActive {
		return nil, apperrors.InvalidState(fmt.Sprintf("Booking is already %s", booking.Status))
	}

	changed, err := l.repo.TransitionStatus(ctx, id, model.StatusActive, model.StatusCancelled)
	if err != nil {
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}
	if !changed {
		// Lost a race with another cancel or the sweep.
		return nil, apperrors.InvalidState("Booking is no longer active")
	}

	booking.Status = model.StatusCancelled
	l.cfg.Log.Info("Booking cancelled", "id", id, "room_id", booking.RoomID)
	return booking, nil
}

// Update merges the changes into the existing booking, re-validates a moved
// range exactly like Create does (excluding the booking's own id from the
// conflict check), and persists the result.
func (l *Lifecycle) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := l.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.Terminal() {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot update a %s booking", existing.Status))
	}

	if err := l.validator.ValidateUpdate(updates); err != nil {
		l.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	merged := l.mergeUpdates(existing, updates)
	l.sanitize(merged)
	if err := l.validator.ValidateRange(existing, merged); err != nil {
		return nil, validationError(err)
	}

	rangeChanged := !merged.StartTime.Equal(existing.StartTime) || !merged.EndTime.Equal(existing.EndTime)
	if rangeChanged {
		lockID, err := l.acquireSlotLock(ctx, merged.RoomID, merged.StartTime)
		if err != nil {
			return nil, err
		}
		defer func() {
			if releaseErr := l.releaseSlotLock(ctx, lockID); releaseErr != nil {
				l.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
			}
		}()
	}

	err = l.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if rangeChanged {
			conflicting, err := l.detector.FindConflict(txCtx, merged.RoomID, merged.Range(), merged.ID)
			if err != nil {
				return apperrors.Internal("Failed to check existing bookings", err)
			}
			if conflicting != nil {
				return conflictError(conflicting)
			}
		}
		if err := l.repo.Update(txCtx, id, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.cfg.Log.Info("Booking updated successfully", "id", id)
	return merged, nil
}

// SweepExpired transitions active bookings whose end time has passed to
// completed and returns how many changed. One call processes at most
// SweepBatchSize bookings; a larger backlog drains over successive calls.
// Each transition is a compare-and-set, so concurrent or repeated sweeps
// never double-count; a booking that fails to transition is skipped, not
// fatal, since the sweep is housekeeping that runs again on the next tick.
func (l *Lifecycle) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := l.repo.FindExpired(ctx, now, l.cfg.SweepBatchSize)
	if err != nil {
		return 0, apperrors.Internal("Failed to find expired bookings", err)
	}

	count := 0
	for _, booking := range expired {
		changed, err := l.repo.TransitionStatus(ctx, booking.ID, model.StatusActive, model.StatusCompleted)
		if err != nil {
			l.cfg.Log.Warn("Failed to complete expired booking, skipping",
				"id", booking.ID,
				"error", err,
			)
			continue
		}
		if changed {
			count++
		}
	}

	if count > 0 {
		l.cfg.Log.Info("Expired bookings swept", "count", count, "now", now)
	}
	return count, nil
}

// CancelAllForRoom cancels every active booking of a room. Invoked by the
// room-owning service when it deletes a room; the room record itself is not
// this module's concern.
func (l *Lifecycle) CancelAllForRoom(ctx context.Context, roomID string) (int64, error) {
	if roomID == "" {
		return 0, apperrors.InvalidInput("Room ID cannot be empty")
	}

	count, err := l.repo.CancelActiveByRoom(ctx, roomID)
	if err != nil {
		return 0, apperrors.Internal("Failed to cancel bookings for room", err)
	}

	l.cfg.Log.Info("Cancelled active bookings for deleted room", "room_id", roomID, "count", count)
	return count, nil
}

// --- Helpers ---

func (l *Lifecycle) findByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := l.repo.FindByID(ctx, id)
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

func (l *Lifecycle) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusActive
	}
	// An unset count falls back to the participant list when one was given.
	// Any other non-positive value is left for the validator to reject.
	if b.ParticipantsCount == 0 && len(b.ParticipantIDs) > 0 {
		b.ParticipantsCount = len(b.ParticipantIDs)
	}
}

func (l *Lifecycle) sanitize(b *model.Booking) {
	b.Title = sanitizer.SanitizeTitle(b.Title)
}

func (l *Lifecycle) validate(booking *model.Booking) error {
	if err := l.validator.Validate(booking); err != nil {
		l.cfg.Log.Warn("Booking validation failed", "error", err)
		return validationError(err)
	}
	return nil
}

func (l *Lifecycle) mergeUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.ParticipantsCount != nil {
		merged.ParticipantsCount = *updates.ParticipantsCount
	}
	if updates.ParticipantIDs != nil {
		merged.ParticipantIDs = *updates.ParticipantIDs
	}
	if updates.IsPrivate != nil {
		merged.IsPrivate = *updates.IsPrivate
	}

	return &merged
}

// storageConflict translates a storage-level uniqueness rejection into the
// conflict contract, attaching the overlapping booking when it can be found.
func (l *Lifecycle) storageConflict(ctx context.Context, booking *model.Booking) error {
	conflicting, err := l.detector.FindConflict(ctx, booking.RoomID, booking.Range(), "")
	if err == nil && conflicting != nil {
		return conflictError(conflicting)
	}
	return apperrors.Conflict("Booking time overlaps with an existing booking")
}

// acquireSlotLock creates an advisory lock for the room/slot coordinates.
// Returns a CONFLICT error if another request currently holds the slot.
func (l *Lifecycle) acquireSlotLock(ctx context.Context, roomID string, startTime time.Time) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s_%d", roomID, startTime.Unix())

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: l.now().Add(l.cfg.BookingLockTTL),
	}

	_, err := l.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (l *Lifecycle) releaseSlotLock(ctx context.Context, lockID string) error {
	return l.lockRepo.Delete(ctx, lockID)
}

func conflictError(conflicting *model.Booking) error {
	return apperrors.ConflictWithBooking(fmt.Sprintf(
		"Booking time overlaps with existing booking (%s - %s)",
		conflicting.StartTime.Format(time.RFC3339),
		conflicting.EndTime.Format(time.RFC3339),
	), conflicting)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	message := "Booking validation failed"
	if errors.As(err, &verrs) && verrs.Primary() != "" {
		message = verrs.Primary()
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
