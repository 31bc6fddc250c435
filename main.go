package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dairyflow-backend/config"
	"dairyflow-backend/controllers"
	"dairyflow-backend/models"
	"dairyflow-backend/routes"
	"dairyflow-backend/services"
	"dairyflow-backend/store"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("database connected")

	st := store.New(db)
	location := cfg.Billing.Location()

	var locker services.Locker = services.NewInMemoryLocker()
	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = services.NewRedisLocker(redisClient, "", logger)
		logger.Info("using redis billing locks", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR not set, billing locks are local to this process")
	}

	billing := services.NewBillingService(st, locker, logger, services.BillingOptions{
		Location:     location,
		LookbackDays: cfg.Billing.LookbackDays,
		BatchSize:    cfg.Billing.BatchSize,
		LockTTL:      cfg.Billing.LockTTL,
	}).WithMetrics(services.NewBillingMetrics(prometheus.DefaultRegisterer))

	var links *utils.BillLinkSigner
	if cfg.BillLinkSecret != "" {
		links, err = utils.NewBillLinkSigner(cfg.BillLinkSecret, cfg.BillLinkTTL)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("BILL_LINK_SECRET not set, shareable bill links are disabled")
	}

	var notifier *services.NotificationService
	if cfg.Twilio.Enabled() {
		notifier = services.NewNotificationService(services.NewTwilioSender(cfg.Twilio), st, links,
			cfg.Twilio, cfg.PublicBaseURL, logger)
		billing.WithNotifier(notifier)
	} else {
		logger.Warn("Twilio credentials not set, bill notifications are disabled")
	}

	h := &controllers.Controller{
		Store:      st,
		Billing:    billing,
		Deliveries: services.NewDeliveryService(st, logger),
		Notifier:   notifier,
		Links:      links,
		Location:   location,
		Logger:     logger,
	}

	var scheduler *services.BillingScheduler
	if cfg.Billing.Cron != "" {
		scheduler = services.NewBillingScheduler(billing, location, logger)
		if err := scheduler.Schedule(cfg.Billing.Cron); err != nil {
			return err
		}
		scheduler.Start()
	}

	r := routes.SetupRouter(cfg, h, logger, prometheus.DefaultGatherer)
	if !cfg.IsProduction() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	return srv.Shutdown(ctx)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
