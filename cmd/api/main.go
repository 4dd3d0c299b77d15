package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/config"
	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/repository"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/backend"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/cache"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/database"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	infraRepo "github.com/bumisubur/pos-gateway/internal/infrastructure/repository"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/handler"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/routes"
	"github.com/bumisubur/pos-gateway/pkg/logger"
	"github.com/bumisubur/pos-gateway/pkg/printer"
	"github.com/bumisubur/pos-gateway/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	logCfg.File = cfg.Log.File
	appLog, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions := newSessionStore(ctx, cfg, appLog)
	defer closeSessions()

	journal, idempotency := newJournal(cfg, appLog)

	p, err := printer.NewPrinterFromConfig(printer.Config{
		Type:       cfg.Printer.Type,
		SpoolerURL: cfg.Printer.SpoolerURL,
		Printer:    cfg.Printer.Name,
		USBPath:    cfg.Printer.USBPath,
		Address:    cfg.Printer.Address,
		Timeout:    cfg.Printer.Timeout,
	})
	if err != nil {
		appLog.WithError(err).Fatal("Failed to configure printer")
	}

	loc, err := time.LoadLocation(cfg.Receipt.Timezone)
	if err != nil {
		appLog.WithError(err).Warnf("Unknown receipt timezone %q, using UTC", cfg.Receipt.Timezone)
		loc = time.UTC
	}

	m := metrics.New()
	client := backend.NewClient(cfg.Backend, appLog)

	// Initialize services
	authService := service.NewAuthService(client, sessions, appLog)
	receiptService := service.NewReceiptService(client, p, journal, service.ReceiptSettings{
		Header: entity.ReceiptHeader{
			ShopName:     cfg.Receipt.ShopName,
			AddressLines: cfg.Receipt.AddressLines,
			Footer:       cfg.Receipt.Footer,
		},
		Width:         cfg.Receipt.Width,
		Location:      loc,
		MobileScheme:  cfg.MobilePrint.Scheme,
		PublicBaseURL: cfg.App.PublicBaseURL,
	}, m, appLog)
	checkoutService := service.NewCheckoutService(client, receiptService, m, appLog)
	directoryService := service.NewDirectoryService(client, appLog)

	cookie := handler.SessionCookie{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService, checkoutService, cookie),
		Session:   handler.NewSessionHandler(authService, cookie),
		Checkout:  handler.NewCheckoutHandler(checkoutService),
		Receipt:   handler.NewReceiptHandler(receiptService),
		Directory: handler.NewDirectoryHandler(directoryService),
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	go rateLimiter.Run(ctx.Done())
	go purgeIdempotencyKeys(ctx, idempotency, appLog)
	go sweepCheckouts(ctx, checkoutService, cfg.Session.TTL, appLog)

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Log:             appLog,
		AuthService:     authService,
		Directory:       directoryService,
		Cookie:          cookie,
		IdempotencyRepo: idempotency,
		Metrics:         m,
		RateLimiter:     rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithFields(logrus.Fields{
			"port":    cfg.App.Port,
			"backend": cfg.Backend.BaseURL,
			"printer": p.Name(),
		}).Info("Starting POS gateway")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Graceful shutdown failed")
	}
}

// newSessionStore picks the session store named by SESSION_STORE.
func newSessionStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repository.SessionRepository, func()) {
	if cfg.Session.Store != "redis" {
		return cache.NewMemorySessionStore(cfg.Session.TTL), func() {}
	}

	store := cache.NewRedisSessionStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	log.WithField("addr", cfg.Redis.Addr).Info("Sessions stored in Redis")
	return store, func() { _ = store.Close() }
}

// newJournal keeps print jobs and idempotency keys in Postgres when DB_HOST
// is set, in memory otherwise.
func newJournal(cfg *config.Config, log *logrus.Logger) (repository.PrintJobRepository, repository.IdempotencyRepository) {
	if !cfg.Database.JournalEnabled() {
		log.Info("DB_HOST not set, keeping the print journal in memory")
		return infraRepo.NewMemoryPrintJobRepository(), infraRepo.NewMemoryIdempotencyRepository()
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.AutoMigrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	return infraRepo.NewPrintJobRepository(db), infraRepo.NewIdempotencyRepository(db)
}

func purgeIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, log *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.WithError(err).Warn("Failed to purge idempotency keys")
			}
		case <-ctx.Done():
			return
		}
	}
}

// sweepCheckouts drops carts whose session has been idle longer than the
// session TTL.
func sweepCheckouts(ctx context.Context, checkouts *service.CheckoutService, idle time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := checkouts.Sweep(idle); n > 0 {
				log.WithField("dropped", n).Debug("Swept idle checkouts")
			}
		case <-ctx.Done():
			return
		}
	}
}
