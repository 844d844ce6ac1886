package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/database"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/logging"
	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/notify"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/router"
	"github.com/iliyamo/study-room-reservation/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Env)
	metrics.Register()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	if version, err := database.MigrationVersion(ctx, db); err == nil {
		log.Info().Int64("version", version).Msg("schema migrated")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, cache and rate limiting disabled")
	}

	// repositories
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	whitelist := repository.NewWhitelistRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	seats := repository.NewSeatRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	reservations := repository.NewReservationRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	announcements := repository.NewAnnouncementRepo(db)

	settings := config.NewSettings(settingsRepo, cfg.DefaultWebhookURL)
	if err := settings.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("settings load failed, using defaults")
	}

	dispatcher := notify.New(settings, log)
	publisher := queue.NewPublisher(cfg.AMQPURL, log)

	identity := service.NewIdentityService(users, profiles, whitelist, log, cfg.BcryptCost)
	engine := service.NewReservationService(reservations, rooms, seats, dispatcher, publisher, log, cfg.AutoApprove)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, identity, users, profiles, tokens),
		Calendar:  handler.NewCalendarHandler(engine, reservations, rooms, equipment, users, profiles, log),
		Admin:     handler.NewAdminHandler(rooms, seats, equipment, settingsRepo, settings, announcements, log),
		Dashboard: handler.NewDashboardHandler(rooms, reservations, users, equipment, announcements),
		Export:    handler.NewExportHandler(reservations, log),
	}, cfg, db, rdb)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}
}
