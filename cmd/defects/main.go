package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"defecttracker/internal/config"
	"defecttracker/internal/observability/logging"
	"defecttracker/internal/observability/metrics"
	"defecttracker/internal/serial"
	impl "defecttracker/internal/service/impl"
	"defecttracker/internal/store"
	httpx "defecttracker/internal/transport/http"
	"defecttracker/pkg/db"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "defects",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister("defects")

	logger.Info("starting service")

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.AutoMigrate(ctx); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}
	if err := st.SeedTags(ctx); err != nil {
		logger.Error("seed tags", "error", err)
		os.Exit(1)
	}

	// 2) Services
	pw := impl.NewBcryptPasswordService(bcrypt.DefaultCost)
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		SigningKey: []byte(cfg.JWTSecret),
	})
	serials := serial.New(cfg.SerialPrefix, st.Serials())

	services := httpx.Services{
		Defects:  impl.NewDefectServiceImpl(st, serials, impl.DefectConfig{MaxAttempts: cfg.MutationMaxAttempts}),
		Comments: impl.NewCommentServiceImpl(st),
		Audit:    impl.NewAuditServiceImpl(st),
		Identity: impl.NewIdentityServiceImpl(st, pw, ts),
		Tokens:   ts,
		Users:    impl.NewUserServiceImpl(st),
		Settings: impl.NewSettingsServiceImpl(st),
	}

	// 3) HTTP
	handler := httpx.NewRouter(services, httpx.RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RequestTimeout:    cfg.RequestTimeout,
		SecureCookies:     cfg.Environment == "production",
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	slog.Info("defects service listening", "addr", srv.Addr, "driver", cfg.DatabaseDriver, "serial_prefix", serials.Prefix())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
