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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/config"
	"github.com/iliyamo/gym-booking/internal/database"
	"github.com/iliyamo/gym-booking/internal/handler"
	"github.com/iliyamo/gym-booking/internal/logger"
	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/queue"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/router"
	"github.com/iliyamo/gym-booking/internal/service"
	"github.com/iliyamo/gym-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.AppName, cfg.Env)

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if cfg.DBMigrate {
		if err := database.Migrate(dsn, log); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}
	db, err := database.Open(dsn, database.Pool{MaxOpen: cfg.DBMaxOpen, MaxIdle: cfg.DBMaxIdle, MaxLifetime: cfg.DBMaxLifetime})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer func() { _ = db.Close() }()

	// Caching and rate limiting are optional; without Redis they pass through.
	var rdb *redis.Client
	if c, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		log.WithError(err).Warn("redis unavailable, cache and rate limit disabled")
	} else {
		rdb = c
		defer func() { _ = rdb.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hash := utils.Hasher(cfg.BcryptCost)
	logins := repository.NewLoginRepo(db)
	addresses := repository.NewAddressRepo(db)
	admins := repository.NewProvisioner[model.Admin, *model.Admin](db, logins, addresses, hash)
	trainers := repository.NewProvisioner[model.Trainer, *model.Trainer](db, logins, addresses, hash)
	members := repository.NewProvisioner[model.Member, *model.Member](db, logins, addresses, hash)
	activities := repository.NewActivityRepo(db)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub := service.NewBookingPublisher(cfg.AMQPURL, log)
		defer func() { _ = pub.Close() }()
		events = pub

		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogPath, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("booking consumer stopped")
			}
		}()
	}

	base := handler.Base{Log: log, Timeout: cfg.RequestTimeout}
	h := router.Handlers{
		Users: &handler.UserHandler{
			Base: base, Secret: cfg.JWTSecret, TTLMin: cfg.AccessTTLMin,
			Logins: logins, Admins: admins, Trainers: trainers, Members: members,
		},
		Admins:   handler.NewAdminHandler(base, admins),
		Trainers: handler.NewTrainerHandler(base, trainers),
		Members:  handler.NewMemberHandler(base, members),
		Bookings: &handler.BookingHandler{
			Base: base, Bookings: repository.NewBookingRepo(db),
			Members: members, Trainers: trainers, Activities: activities, Events: events,
		},
		Activities: &handler.ActivityHandler{Base: base, Activities: activities},
		Blogs:      &handler.BlogHandler{Base: base, Blogs: repository.NewBlogRepo(db)},
		Addresses:  &handler.AddressHandler{Base: base, Addresses: addresses},
		Ready:      handler.Ready(db),
	}
	opts := router.Options{
		Cfg:       cfg,
		Log:       log,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Sessions:  logins,
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	router.Use(e, opts)
	router.RegisterRoutes(e, h)
	router.RegisterAPI(e, opts, h)

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
