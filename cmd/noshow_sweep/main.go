package main

import (
	"context"
	"flag"
	"log"

	"innkeeper/internal/config"
	"innkeeper/internal/database"
	"innkeeper/internal/logging"
	"innkeeper/internal/modules/availability"
	"innkeeper/internal/modules/booking"
	"innkeeper/internal/modules/payment"
	"innkeeper/internal/modules/pricing"
	"innkeeper/internal/repository"
)

// Marks overdue confirmed bookings as no-shows. Meant to run from cron
// shortly after midnight hotel time.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatal(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	availabilitySvc := availability.NewService(roomRepo, bookingRepo, maintenanceRepo)
	pricingSvc := pricing.NewService(cfg.Pricing)
	// No payment activity happens during the sweep, so the gate runs
	// without the redis lock.
	paymentSvc := payment.NewService(paymentRepo, bookingRepo, nil, cfg.Policy, logger, nil)
	bookingSvc := booking.NewService(bookingRepo, roomRepo, availabilitySvc, pricingSvc, paymentSvc, nil, cfg.Policy, logger, nil)

	swept, err := bookingSvc.SweepNoShows(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("no-show sweep failed")
	}
	logger.Info().Int("swept", swept).Msg("no-show sweep finished")
}
