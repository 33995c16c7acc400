package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/cache"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/config"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/logger"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/persistence"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/remote"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/telemetry"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/handler"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/middleware"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to the config file (default: ./config.toml)")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	logsCfg := otelCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		return fmt.Errorf("init log export: %w", err)
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider)

	log.Info("Starting invoice engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store_mode", cfg.Store.Mode),
		zap.Bool("tracing", tracerProvider.IsEnabled()),
		zap.Bool("metrics", meterProvider.IsEnabled()),
		zap.Bool("log_export", loggerProvider.IsEnabled()),
	)

	store, checks, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	stockCache, err := cache.NewStockCache(ctx, cfg.StockCache, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("init stock cache: %w", err)
	}
	defer func() {
		if err := stockCache.Close(); err != nil {
			log.Error("Error closing stock cache", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewGuardMetrics(telemetry.GuardMetricsConfig{
		Meter:  meterProvider.Meter(cfg.Telemetry.ServiceName),
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("init guard metrics: %w", err)
	}

	policy := invoice.Policy{
		MinimumInvoiceAmount: cfg.Policy.MinimumInvoiceAmount,
		LargeAdjustmentRatio: cfg.Policy.LargeAdjustmentRatio,
	}
	sessions := invoicing.NewSessionStore(cfg.Session.TTL)
	defer func() { _ = sessions.Close() }()

	oracle := invoicing.NewStockOracle(store, stockCache, metrics, log)
	editor := invoicing.NewEditorService(store, oracle, sessions, invoice.NewSaveGuard(policy), metrics, log)
	settlements := invoicing.NewSettlementService(store, metrics, log)
	adjustments := invoicing.NewStockAdjustmentService(store, oracle, policy, metrics, log)

	engine := newEngine(cfg, log)
	health := handler.NewHealthHandler(checks)
	r := router.NewRouter(engine)
	router.RegisterInvoiceAPI(r, router.Handlers{
		Sessions:    handler.NewSessionHandler(editor),
		Settlements: handler.NewSettlementHandler(settlements),
		Items:       handler.NewItemHandler(oracle, adjustments),
		Health:      health,
	})
	r.Setup()

	// Load balancers check health outside the versioned API
	engine.GET("/health", health.Check)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

// openStore builds the configured invoice store with its health checks and
// a close function
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (invoice.Store, map[string]handler.HealthCheck, func(), error) {
	if cfg.Store.Mode == config.StoreModeRemote {
		client, err := remote.NewClient(cfg.Store, remote.WithLogger(log))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init store client: %w", err)
		}
		log.Info("Using remote accounting store", zap.String("base_url", cfg.Store.BaseURL))
		return remote.NewStore(client), map[string]handler.HealthCheck{}, func() {}, nil
	}

	db, err := persistence.NewDatabase(cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: cfg.Log.Level,
		Tracing: telemetry.DBTracingConfig{
			Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			DBName:     cfg.Database.DBName,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
	return persistence.NewGormStore(db), map[string]handler.HealthCheck{"database": db.Ping}, closeDB, nil
}

func newEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	})...)

	middleware.SetupValidator()
	return engine
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
