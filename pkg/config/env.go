package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingLockTTL      = "BOOKING_LOCK_TTL"
	EnvSweepInterval       = "SWEEP_INTERVAL"
	EnvSweepBatchSize      = "SWEEP_BATCH_SIZE"
	EnvMaxRecurrenceWeeks  = "MAX_RECURRENCE_WEEKS"
	EnvAnalyticsWindowWeeks = "ANALYTICS_WINDOW_WEEKS"

	EnvBusinessDayStart = "BUSINESS_DAY_START"
	EnvBusinessDayEnd   = "BUSINESS_DAY_END"
)
