// Package recurrence expands a weekly pattern into concrete bookings over a
// bounded horizon. Typical use is scheduled maintenance or cleaning blocks
// that repeat on fixed weekdays.
package recurrence

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// BookingCreator is satisfied by the lifecycle manager; the generator funnels
// every occurrence through the exact same validation and conflict path as a
// one-off booking.
type BookingCreator interface {
	Create(ctx context.Context, booking *model.Booking) error
}

type Generator struct {
	creator BookingCreator
	cfg     *config.Config
	log     *logger.Logger
	now     func() time.Time
}

func NewGenerator(creator BookingCreator, cfg *config.Config) *Generator {
	return &Generator{
		creator: creator,
		cfg:     cfg,
		log:     cfg.Log,
		now:     time.Now,
	}
}

type GenerateInput struct {
	Title             string
	RoomID            string
	OrganizerID       string
	OrganizationID    string
	Pattern           model.RecurrencePattern
	WeeksAhead        int
	ParticipantsCount int
	IsPrivate         bool
}

// Result reports how many occurrences were created and their ids in
// generation order (week ascending, weekday ascending within a week).
type Result struct {
	CreatedCount int      `json:"created_count"`
	BookingIDs   []string `json:"booking_ids"`
}

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Generate validates the pattern up front (malformed input fails the whole
// batch before any booking attempt), then walks the horizon creating one
// booking per week/weekday slot. An occupied slot yields a CONFLICT from the
// creator and is skipped: one busy slot must not sink the rest of the
// series. Any other creation error aborts the batch.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*Result, error) {
	startMinutes, endMinutes, err := g.validateInput(&in)
	if err != nil {
		return nil, err
	}

	days := append([]time.Weekday(nil), in.Pattern.DaysOfWeek...)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	result := &Result{BookingIDs: []string{}}
	today := g.now()

	for week := 0; week < in.WeeksAhead; week++ {
		for _, day := range days {
			date := nextWeekday(today, day).AddDate(0, 0, 7*week)
			booking := &model.Booking{
				Title:             in.Title,
				RoomID:            in.RoomID,
				OrganizerID:       in.OrganizerID,
				OrganizationID:    in.OrganizationID,
				ParticipantsCount: in.ParticipantsCount,
				StartTime:         date.Add(time.Duration(startMinutes) * time.Minute),
				EndTime:           date.Add(time.Duration(endMinutes) * time.Minute),
				IsPrivate:         in.IsPrivate,
				Status:            model.StatusActive,
			}

			err := g.creator.Create(ctx, booking)
			if err != nil {
				if apperrors.IsCode(err, apperrors.CodeConflict) {
					g.log.Debug("Recurring slot occupied, skipping",
						"room_id", in.RoomID,
						"start_time", booking.StartTime,
					)
					continue
				}
				return result, err
			}

			result.CreatedCount++
			result.BookingIDs = append(result.BookingIDs, booking.ID)
		}
	}

	g.log.Info("Recurring bookings generated",
		"room_id", in.RoomID,
		"weeks_ahead", in.WeeksAhead,
		"created", result.CreatedCount,
	)
	return result, nil
}

func (g *Generator) validateInput(in *GenerateInput) (startMinutes, endMinutes int, err error) {
	if in.RoomID == "" {
		return 0, 0, apperrors.Validation("Room ID is required", nil)
	}
	if in.OrganizerID == "" {
		return 0, 0, apperrors.Validation("Organizer ID is required", nil)
	}
	if in.WeeksAhead <= 0 {
		return 0, 0, apperrors.Validation("Weeks ahead must be positive", map[string]any{
			"weeks_ahead": in.WeeksAhead,
		})
	}
	if in.WeeksAhead > g.cfg.MaxRecurrenceWeeks {
		return 0, 0, apperrors.Validation(
			fmt.Sprintf("Weeks ahead cannot exceed %d", g.cfg.MaxRecurrenceWeeks),
			map[string]any{"weeks_ahead": in.WeeksAhead},
		)
	}
	if len(in.Pattern.DaysOfWeek) == 0 {
		return 0, 0, apperrors.Validation("Pattern must include at least one day of week", nil)
	}
	for _, day := range in.Pattern.DaysOfWeek {
		if day < time.Sunday || day > time.Saturday {
			return 0, 0, apperrors.Validation("Pattern contains an invalid day of week", map[string]any{
				"day": int(day),
			})
		}
	}

	startMinutes, err = parseClock(in.Pattern.StartTime)
	if err != nil {
		return 0, 0, err
	}
	endMinutes, err = parseClock(in.Pattern.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if endMinutes <= startMinutes {
		return 0, 0, apperrors.Validation("End time must be after start time", map[string]any{
			"start_time": in.Pattern.StartTime,
			"end_time":   in.Pattern.EndTime,
		})
	}

	if in.Title == "" {
		in.Title = "Recurring maintenance"
	}
	if in.ParticipantsCount <= 0 {
		in.ParticipantsCount = 1
	}

	return startMinutes, endMinutes, nil
}

func parseClock(s string) (int, error) {
	if !clockRegex.MatchString(s) {
		return 0, apperrors.Validation(
			fmt.Sprintf("Pattern time must be in HH:MM format (00:00-23:59), got: %s", s), nil)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return h*60 + m, nil
}

// nextWeekday returns midnight of the first occurrence of day strictly after
// today, so week zero never produces slots in the past.
func nextWeekday(now time.Time, day time.Weekday) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day) - int(now.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return midnight.AddDate(0, 0, offset)
}
