package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trustmebro/cert-service/internal/assets"
	"trustmebro/cert-service/internal/bootstrap"
	"trustmebro/cert-service/internal/certificates"
	"trustmebro/cert-service/internal/config"
	"trustmebro/cert-service/internal/janitor"
	"trustmebro/cert-service/internal/metrics"
	"trustmebro/cert-service/pkg/pdf"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		bootLogger, _ := zap.NewDevelopment()
		bootLogger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize logger
	logger, err := bootstrap.NewLogger(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := bootstrap.LoadAWS(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	store := bootstrap.NewValidationStore(ctx, cfg, awsCfg, logger)
	defer store.Close()

	documents, err := bootstrap.NewDocumentStore(cfg, awsCfg)
	if err != nil {
		logger.Fatal("Failed to initialise document storage", zap.Error(err))
	}

	recorder := metrics.NewRecorder()

	options := pdf.DefaultOptions()
	options.FontPath = cfg.Assets.FontPath
	if _, err := os.Stat(cfg.Assets.FontPath); err != nil {
		logger.Warn("Font not found, falling back to Helvetica", zap.String("font_path", cfg.Assets.FontPath))
	}

	service := certificates.NewService(certificates.ServiceConfig{
		BaseURL:   cfg.Server.BaseURL,
		RecordTTL: cfg.Validation.RecordTTL,
	}, store, documents, assets.NewPicker(cfg.Assets.Dir, nil), pdf.NewGenerator(options), logger).
		WithMetrics(recorder).
		WithPublisher(bootstrap.NewPublisher(cfg, awsCfg, logger))

	handler := certificates.NewHandler(service, certificates.HandlerOptions{
		DeleteAfterDownload: cfg.Documents.DeleteAfterDownload,
	}, logger)

	// In-process document janitor
	if cfg.Documents.SweepSchedule != "" {
		j, err := janitor.New(documents, cfg.Documents.SweepSchedule,
			cfg.Documents.DocumentMaxAge(cfg.Validation.RecordTTL), recorder, logger)
		if err != nil {
			logger.Fatal("Failed to configure document janitor", zap.Error(err))
		}
		if err := j.Start(ctx); err != nil {
			logger.Fatal("Failed to start document janitor", zap.Error(err))
		}
		defer j.Stop()
	}

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), certificates.RequestID(), certificates.CORS(), requestLogger(logger))

	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("store", cfg.Validation.Backend),
		zap.String("documents", cfg.Documents.Backend),
	)

	// Graceful Shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("request_id", c.GetString(certificates.RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
