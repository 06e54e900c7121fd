package main

import (
	analyticsrepo "roomly/internal/analytics/repository"
	analyticssvc "roomly/internal/analytics/service"
	"roomly/internal/bookings/conflict"
	"roomly/internal/bookings/events"
	"roomly/internal/bookings/handler"
	"roomly/internal/bookings/recurrence"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/service"
	"roomly/internal/bookings/validator"
	"roomly/pkg/app"
	"roomly/pkg/config"
	"roomly/pkg/kafka"
	kafkaconfig "roomly/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	// Building the full graph up front fails fast on a bad configuration
	// before the instance reports ready. The services themselves are consumed
	// in-process by the external web layer, not served from this binary.
	_, _ = initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetHandler(handler.NewHealthHandler(ServiceName, cfg.Client.Mongo, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.BookingService, analyticssvc.AnalyticsService) {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	detector := conflict.NewDetector(bookingRepo)
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	lifecycle := service.NewLifecycle(bookingRepo, lockRepo, detector, bookingValidator, cfg)
	generator := recurrence.NewGenerator(lifecycle, cfg)

	bookingService := service.NewBookingService(lifecycle, generator, bookingRepo, initPublisher(cfg), cfg)
	analyticsService := analyticssvc.NewAnalyticsService(analyticsrepo.NewMongoAnalyticsRepository(cfg), cfg)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, analyticsService
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NopPublisher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	return events.NewKafkaPublisher(producer, cfg.Log)
}
