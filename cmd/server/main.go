package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"novadrive/internal/api"
	"novadrive/internal/availability"
	"novadrive/internal/config"
	"novadrive/internal/logger"
	"novadrive/internal/repository"
	"novadrive/internal/service"
)

func main() {
	cfg, err := config.Load()
	logger.InitLogger(cfg.Stage)
	defer logger.Sync()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open DB", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("failed to connect to DB", zap.Error(err))
	}

	stripe.Key = cfg.Stripe.SecretKey
	if stripe.Key == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout will fail")
	}

	vehicleRepo := repository.NewVehicleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	stripeRepo := repository.NewStripeRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	jobRepo := repository.NewJobRepository(db)

	notifier := service.NewNotifyService(cfg)
	sender := service.NewSenderService(notifier, notifier, cfg.Stripe.Currency)
	stripeService := service.NewStripeService(cfg.Stripe.Currency, cfg.FrontendURL)

	pricingService := service.NewPricingService(vehicleRepo, bookingRepo, cfg.Stripe.Currency)
	availabilityService := service.NewAvailabilityService(vehicleRepo, bookingRepo)
	bookingService := service.NewBookingService(
		vehicleRepo, bookingRepo, stripeRepo, availabilityService, stripeService, sender,
		service.BookingOptions{
			Currency:             cfg.Stripe.Currency,
			CancellationWindow:   cfg.Booking.CancellationWindow,
			OnsiteDepositPercent: cfg.Booking.OnsiteDepositPercent,
		},
	)
	adminService := service.NewAdminService(adminRepo, vehicleRepo)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobService := service.NewJobService(jobRepo, cfg.Booking.PendingTTL)

	scheduler := cron.New(cron.WithLocation(availability.BusinessTimezone.Location()))
	if err := jobService.Register(scheduler); err != nil {
		logger.Fatal("failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(api.Handlers{
		Vehicles:  api.NewVehicleHandler(pricingService, availabilityService),
		Bookings:  api.NewUserBookingHandler(bookingService),
		Stripe:    api.NewStripeWebhookHandler(cfg.Stripe.WebhookSecret, bookingService),
		Admin:     api.NewAdminHandler(adminService, availabilityService),
		AdminAuth: api.NewAdminAuthHandler(adminAuthService),
	}, cfg.JWTSecret)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(logger.Log)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           recovery(cors(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port), zap.String("stage", cfg.Stage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
