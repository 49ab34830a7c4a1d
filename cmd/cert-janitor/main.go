package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"trustmebro/cert-service/internal/bootstrap"
	"trustmebro/cert-service/internal/config"
	"trustmebro/cert-service/internal/janitor"
)

// cert-janitor removes rendered certificates older than documents.max_age.
// Run it with -once from an external scheduler, or without to use documents.sweep_schedule.
func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		bootLogger, _ := zap.NewDevelopment()
		bootLogger.Fatal("Failed to load config", zap.Error(err))
	}

	logger, err := bootstrap.NewLogger(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !cfg.DocumentsExpire() {
		logger.Info("Documents never expire, nothing to sweep; set documents.max_age to enable the janitor")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := bootstrap.LoadAWS(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	documents, err := bootstrap.NewDocumentStore(cfg, awsCfg)
	if err != nil {
		logger.Fatal("Failed to initialise document storage", zap.Error(err))
	}

	schedule := cfg.Documents.SweepSchedule
	if schedule == "" {
		schedule = "@hourly"
	}

	j, err := janitor.New(documents, schedule, cfg.Documents.DocumentMaxAge(cfg.Validation.RecordTTL), nil, logger)
	if err != nil {
		logger.Fatal("Failed to configure document janitor", zap.Error(err))
	}

	if *once {
		removed := j.Sweep(ctx)
		logger.Info("Sweep finished", zap.Int("removed", removed))
		return
	}

	if err := j.Start(ctx); err != nil {
		logger.Fatal("Failed to start document janitor", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("Janitor shutting down")
	j.Stop()
}
