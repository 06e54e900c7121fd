package kafka_config

import "time"

const (
	// Empty by default: event publishing is optional and disabled unless
	// brokers are configured.
	DefaultKafkaBrokers = ""

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultBookingEventsTopic = "roomly.booking-events"
)
