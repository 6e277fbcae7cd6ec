package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookinghub/config"
	"bookinghub/jobs"
	"bookinghub/repositories"
	"bookinghub/routes"
	"bookinghub/services"
	"bookinghub/services/logger"
	"bookinghub/services/notification"
	"bookinghub/utils"
)

func newLogger(cfg *config.Config) *logger.DefaultLogger {
	level := logger.ParseLevel(cfg.Server.LogLevel)
	if cfg.IsProduction() {
		return logger.NewJSONLogger(level)
	}
	return logger.NewDefaultLogger(level)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := utils.SetLocation(cfg.App.Timezone); err != nil {
		log.Fatalf("Failed to load timezone %s: %v", cfg.App.Timezone, err)
	}
	appLogger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if cfg.DB.AutoMigrate {
		if err := config.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
	}

	rdb, err := config.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		// Cache chỉ phục vụ hiển thị, thiếu Redis vẫn chạy được
		appLogger.Warn("redis unavailable, slot cache disabled: %v", err)
		rdb = nil
	}

	router, m := config.InitApp(cfg, appLogger)

	store := repositories.NewStore(db)
	dispatcher := notification.NewStoreDispatcher(store.Notifications, notification.NewMelodyService(m), appLogger)
	availability := services.NewAvailabilityService(services.AvailabilityServiceOptions{
		Store:   store,
		Cache:   services.NewSlotCache(rdb),
		Logger:  appLogger,
		SlotTTL: cfg.Redis.SlotTTL(),
	})
	bookings := services.NewBookingService(services.BookingServiceOptions{
		Store:          store,
		Availability:   availability,
		Dispatcher:     dispatcher,
		Gateway:        services.NewPaymentGateway(cfg.Payment.RefundURL, cfg.Payment.Timeout()),
		Logger:         appLogger,
		PendingTimeout: cfg.App.PendingPaymentTimeout(),
		BatchSize:      cfg.App.SweepBatchSize,
	})
	payments := services.NewPaymentService(services.PaymentServiceOptions{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     appLogger,
	})
	coupons := services.NewCouponService(services.CouponServiceOptions{
		Store:  store,
		Logger: appLogger,
	})

	scheduler := jobs.NewScheduler(jobs.SchedulerOptions{
		Location: utils.Location(),
		Logger:   appLogger,
		Timeout:  time.Minute,
	})
	for _, job := range jobs.DefaultJobs(cfg.App.SweepSchedule, bookings, coupons) {
		if err := scheduler.Add(job); err != nil {
			log.Fatalf("Failed to schedule job: %v", err)
		}
	}

	routes.SetupRoutes(router, routes.Dependencies{
		Store:        store,
		Availability: availability,
		Bookings:     bookings,
		Payments:     payments,
		Tokens:       services.NewTokenParser(cfg.JWT.Secret),
		Melody:       m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start()
	go func() {
		appLogger.Info("Server starting on port %s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	scheduler.Stop()
	_ = m.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownGraceSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
