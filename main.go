package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"salonpro-booking/config"
	"salonpro-booking/models"
	"salonpro-booking/notifications"
	"salonpro-booking/routes"
	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			logger.Fatal("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = utils.GenerateJWTSecret()
		logger.Warn("JWT_SECRET not set, using a random secret for this process")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.DBURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, using in-process locks", zap.Error(err))
	}
	var locker services.Locker = services.NewLocalLocker()
	if rdb != nil {
		defer rdb.Close()
		locker = services.NewRedisLocker(rdb, 15*time.Second)
		logger.Info("using redis booking locks", zap.String("addr", cfg.RedisAddr))
	}
	limiter := utils.NewRateLimiter(rdb, cfg.RateLimitPerMin, time.Minute, logger)

	policy, err := services.PolicyByName(cfg.AvailabilityPolicy)
	if err != nil {
		logger.Fatal("invalid availability policy", zap.Error(err))
	}

	notifier, closers := notifications.FromConfig(cfg, logger)
	dispatcher := notifications.NewDispatcher(notifier, logger, cfg.NotifyTimeout)

	guard := services.NewConflictGuard(db, locker, policy)
	clients := services.NewClientResolver(dispatcher)
	commissions := services.NewCommissionService(db, locker, logger)
	reminders := services.NewReminderService(db, notifier, strings.Join(cfg.Notifiers, "+"), logger)

	svc := routes.Services{
		Catalog:      services.NewCatalog(db),
		Availability: services.NewAvailabilityService(db, policy),
		Bookings:     services.NewBookingService(db, guard, clients, commissions, dispatcher, logger),
		Requests:     services.NewAppointmentRequestService(db, guard, clients, commissions, dispatcher, logger),
		Commissions:  commissions,
		Reports:      services.NewReportService(db),
		Reminders:    reminders,
		Accounts:     services.NewAccountService(db),
	}

	if cfg.ReminderCron != "" {
		if err := reminders.StartScheduler(cfg.ReminderCron); err != nil {
			logger.Fatal("invalid reminder schedule", zap.Error(err))
		}
		defer reminders.Stop()
	}

	r := routes.SetupRouter(cfg, logger, svc, limiter)
	if !cfg.IsProduction() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("policy", string(policy.Conflict)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	dispatcher.Wait()
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close notifier", zap.Error(err))
		}
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
