package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory slot locks auto-expire so a crashed writer cannot wedge a slot.
	DefaultBookingLockTTL = 10 * time.Second

	DefaultSweepInterval  = 1 * time.Minute
	DefaultSweepBatchSize = 500

	DefaultMaxRecurrenceWeeks   = 52
	DefaultAnalyticsWindowWeeks = 4

	DefaultBusinessDayStart = "08:00"
	DefaultBusinessDayEnd   = "18:00"

	DefaultPaginationLimit = 100
)
