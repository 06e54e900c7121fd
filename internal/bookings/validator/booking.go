package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Primary returns the message of the first (highest-priority) error.
func (v ValidationErrors) Primary() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

type BookingValidator struct {
	validate *validator.Validate
	now      func() time.Time
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return NewBookingValidatorWithClock(log, time.Now)
}

// NewBookingValidatorWithClock injects the time source used by the
// not-in-the-past check. Tests pin it; production uses time.Now.
func NewBookingValidatorWithClock(log *logger.Logger, now func() time.Time) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		now:      now,
		logger:   log,
	}
}

// Validate checks a booking about to be created. The domain checks run in a
// fixed order so the caller always surfaces the most fundamental problem:
// range ordering, then start-not-in-past, then participant count. Struct-tag
// validation of the remaining fields runs last.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if !booking.EndTime.After(booking.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "End time must be after start time",
			},
		}
	}

	if booking.StartTime.Before(v.now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: "Cannot create booking in the past",
			},
		}
	}

	if booking.ParticipantsCount < 1 {
		return ValidationErrors{
			ValidationError{
				Field:   "ParticipantsCount",
				Message: "Participants count must be at least 1",
			},
		}
	}

	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

// ValidateRange re-runs the time checks for an updated booking. The past
// check only applies when the range actually moved; an in-flight meeting may
// still have its title or participants edited.
func (v *BookingValidator) ValidateRange(existing, merged *model.Booking) error {
	if !merged.EndTime.After(merged.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "End time must be after start time",
			},
		}
	}

	rangeChanged := !merged.StartTime.Equal(existing.StartTime) || !merged.EndTime.Equal(existing.EndTime)
	if rangeChanged && merged.StartTime.Before(v.now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: "Cannot create booking in the past",
			},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartTime != nil && update.EndTime != nil {
		if !update.EndTime.After(*update.StartTime) {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "End time must be after start time",
				},
			}
		}
	}

	if update.ParticipantsCount != nil && *update.ParticipantsCount < 1 {
		return ValidationErrors{
			ValidationError{
				Field:   "ParticipantsCount",
				Message: "Participants count must be at least 1",
			},
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
