// Package service computes occupancy reports from the raw aggregates the
// analytics repository returns. Read-side only; reports tolerate slightly
// stale data since they never gate a booking decision.
package service

import (
	"context"
	"math"
	"sort"
	"time"

	"roomly/internal/analytics/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
)

type StatusCounts struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// DayOccupancy is one weekday's occupancy rate, a percentage in [0,100]
// rounded to one decimal.
type DayOccupancy struct {
	DayOfWeek time.Weekday `json:"day_of_week"`
	Rate      float64      `json:"rate"`
}

type RoomUsage struct {
	RoomID       string  `json:"room_id"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"`
	WeeklyCount  int64   `json:"weekly_count"`
	MonthlyCount int64   `json:"monthly_count"`
}

type AnalyticsService interface {
	CountsByOrganizer(ctx context.Context, organizerID string) (*StatusCounts, error)
	CountsByOrganization(ctx context.Context, organizationID string) (*StatusCounts, error)
	OccupancyRateByDayOfWeek(ctx context.Context, organizationID string) ([]DayOccupancy, error)
	UsageRanking(ctx context.Context, organizationID string, limit int) ([]RoomUsage, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *analyticsService) CountsByOrganizer(ctx context.Context, organizerID string) (*StatusCounts, error) {
	if organizerID == "" {
		return nil, apperrors.InvalidInput("Organizer ID cannot be empty")
	}
	return s.countsByScope(ctx, repository.Scope{OrganizerID: organizerID})
}

func (s *analyticsService) CountsByOrganization(ctx context.Context, organizationID string) (*StatusCounts, error) {
	if organizationID == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}
	return s.countsByScope(ctx, repository.Scope{OrganizationID: organizationID})
}

func (s *analyticsService) countsByScope(ctx context.Context, scope repository.Scope) (*StatusCounts, error) {
	counts, err := s.repo.CountsByStatus(ctx, scope)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute booking counts", err)
	}

	result := &StatusCounts{
		Active:    counts[model.StatusActive],
		Completed: counts[model.StatusCompleted],
		Cancelled: counts[model.StatusCancelled],
	}
	result.Total = result.Active + result.Completed + result.Cancelled
	return result, nil
}

// OccupancyRateByDayOfWeek reports, for each weekday, how much of the
// organization's bookable capacity was reserved over the trailing reporting
// window. Capacity per weekday is roomCount x businessDayHours x the number
// of times that weekday occurs in the window (one per week).
func (s *analyticsService) OccupancyRateByDayOfWeek(ctx context.Context, organizationID string) ([]DayOccupancy, error) {
	if organizationID == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}

	now := s.now()
	window := model.TimeRange{
		Start: now.AddDate(0, 0, -7*s.cfg.AnalyticsWindowWeeks),
		End:   now,
	}

	booked, err := s.repo.BookedSecondsByWeekday(ctx, organizationID, window)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute booked time", err)
	}

	roomCount, err := s.repo.CountRooms(ctx, organizationID)
	if err != nil {
		return nil, apperrors.Internal("Failed to count rooms", err)
	}

	availableHours := float64(roomCount) * s.cfg.BusinessDayHours() * float64(s.cfg.AnalyticsWindowWeeks)

	result := make([]DayOccupancy, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		rate := 0.0
		if availableHours > 0 {
			bookedHours := booked[day] / 3600.0
			rate = bookedHours / availableHours * 100.0
		}
		result = append(result, DayOccupancy{
			DayOfWeek: day,
			Rate:      roundRate(clampRate(rate)),
		})
	}
	return result, nil
}

func (s *analyticsService) UsageRanking(ctx context.Context, organizationID string, limit int) ([]RoomUsage, error) {
	if organizationID == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)

	rows, err := s.repo.RoomUsage(ctx, organizationID, s.now())
	if err != nil {
		return nil, apperrors.Internal("Failed to compute room usage", err)
	}

	var total int64
	for _, row := range rows {
		total += row.Count
	}

	// The pipeline sorts already; re-sorting keeps the ranking deterministic
	// if the repository implementation ever changes.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].RoomID < rows[j].RoomID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]RoomUsage, 0, len(rows))
	for _, row := range rows {
		percentage := 0.0
		if total > 0 {
			percentage = float64(row.Count) / float64(total) * 100.0
		}
		result = append(result, RoomUsage{
			RoomID:       row.RoomID,
			Count:        row.Count,
			Percentage:   roundRate(percentage),
			WeeklyCount:  row.WeeklyCount,
			MonthlyCount: row.MonthlyCount,
		})
	}
	return result, nil
}

func clampRate(rate float64) float64 {
	return math.Min(100.0, math.Max(0.0, rate))
}

func roundRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}
