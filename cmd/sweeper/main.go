package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomly/internal/bookings/conflict"
	"roomly/internal/bookings/events"
	"roomly/internal/bookings/recurrence"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/service"
	"roomly/internal/bookings/validator"
	"roomly/pkg/config"
	"roomly/pkg/kafka"
	kafkaconfig "roomly/pkg/kafka/config"
)

const JobName = "booking-sweeper"

// The sweeper is the only writer that moves bookings to completed. It runs
// the expiry sweep on a fixed interval; each transition is a compare-and-set,
// so overlapping runs from multiple replicas are safe.
func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	bookingService := initService(cfg)

	cfg.Log.Info("Starting booking sweeper", "interval", cfg.SweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sweep(ctx, cfg, bookingService)
	for {
		select {
		case <-ctx.Done():
			cfg.Log.Info("Shutdown signal received, stopping sweeper")
			return
		case <-ticker.C:
			sweep(ctx, cfg, bookingService)
		}
	}
}

func sweep(ctx context.Context, cfg *config.Config, svc service.BookingService) {
	sweepCtx, cancel := context.WithTimeout(ctx, cfg.WriteTimeout)
	defer cancel()

	count, err := svc.SweepExpired(sweepCtx, time.Now().UTC())
	if err != nil {
		cfg.Log.Error("Sweep run failed", "error", err)
		return
	}
	if count > 0 {
		cfg.Log.Info("Sweep run finished", "completed", count)
	}
}

func initService(cfg *config.Config) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	detector := conflict.NewDetector(bookingRepo)
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	lifecycle := service.NewLifecycle(bookingRepo, lockRepo, detector, bookingValidator, cfg)
	generator := recurrence.NewGenerator(lifecycle, cfg)

	return service.NewBookingService(lifecycle, generator, bookingRepo, initPublisher(cfg), cfg)
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
