// Package repository runs the read-side aggregations backing occupancy
// reporting. Everything here is a pure query over the bookings collection;
// booking state is never mutated from this package.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingsrepo "roomly/internal/bookings/repository"
	"roomly/pkg/config"
	"roomly/pkg/model"
)

// Scope narrows a status-count query to one organizer or one organization.
// Exactly one field is set; the service validates before calling.
type Scope struct {
	OrganizerID    string
	OrganizationID string
}

func (s Scope) filter() bson.M {
	if s.OrganizerID != "" {
		return bson.M{"organizer_id": s.OrganizerID}
	}
	return bson.M{"organization_id": s.OrganizationID}
}

// RoomUsageRow is one room's raw booking counts: all-time, last 7 days and
// last 30 days, counting active and completed bookings.
type RoomUsageRow struct {
	RoomID       string `bson:"_id"`
	Count        int64  `bson:"count"`
	WeeklyCount  int64  `bson:"weekly_count"`
	MonthlyCount int64  `bson:"monthly_count"`
}

type AnalyticsRepository interface {
	CountsByStatus(ctx context.Context, scope Scope) (map[model.BookingStatus]int64, error)
	BookedSecondsByWeekday(ctx context.Context, organizationID string, window model.TimeRange) (map[time.Weekday]float64, error)
	RoomUsage(ctx context.Context, organizationID string, now time.Time) ([]RoomUsageRow, error)
	CountRooms(ctx context.Context, organizationID string) (int64, error)
}

type mongoAnalyticsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAnalyticsRepository(cfg *config.Config) AnalyticsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAnalyticsRepository{
		cfg:        cfg,
		collection: db.Collection(bookingsrepo.CollectionName),
	}
}

func (r *mongoAnalyticsRepository) CountsByStatus(ctx context.Context, scope Scope) (map[model.BookingStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scope.filter()}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status model.BookingStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	counts := make(map[model.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// BookedSecondsByWeekday sums booking durations per weekday of the start
// time, over active and completed bookings starting inside the window.
// Mongo's $dayOfWeek is 1-based starting at Sunday; subtracting one aligns
// it with time.Weekday.
func (r *mongoAnalyticsRepository) BookedSecondsByWeekday(ctx context.Context, organizationID string, window model.TimeRange) (map[time.Weekday]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organization_id": organizationID,
			"status":          bson.M{"$in": bson.A{model.StatusActive, model.StatusCompleted}},
			"start_time":      bson.M{"$gte": window.Start, "$lt": window.End},
		}}},
		{{Key: "$project", Value: bson.M{
			"day_of_week": bson.M{"$subtract": bson.A{bson.M{"$dayOfWeek": "$start_time"}, 1}},
			"duration_seconds": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$end_time", "$start_time"}},
				1000,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$day_of_week",
			"booked_seconds": bson.M{"$sum": "$duration_seconds"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booked time: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		DayOfWeek     int     `bson:"_id"`
		BookedSeconds float64 `bson:"booked_seconds"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booked time: %w", err)
	}

	booked := make(map[time.Weekday]float64, len(rows))
	for _, row := range rows {
		booked[time.Weekday(row.DayOfWeek)] = row.BookedSeconds
	}
	return booked, nil
}

func (r *mongoAnalyticsRepository) RoomUsage(ctx context.Context, organizationID string, now time.Time) ([]RoomUsageRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organization_id": organizationID,
			"status":          bson.M{"$in": bson.A{model.StatusActive, model.StatusCompleted}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$room_id",
			"count": bson.M{"$sum": 1},
			"weekly_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{"$start_time", weekAgo}}, 1, 0,
			}}},
			"monthly_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{"$start_time", monthAgo}}, 1, 0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate room usage: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []RoomUsageRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode room usage: %w", err)
	}
	return rows, nil
}

func (r *mongoAnalyticsRepository) CountRooms(ctx context.Context, organizationID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	rooms, err := r.collection.Distinct(ctx, "room_id", bson.M{"organization_id": organizationID})
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return int64(len(rooms)), nil
}
