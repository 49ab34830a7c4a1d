// Package bootstrap builds the configured backends shared by the service binaries.
package bootstrap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trustmebro/cert-service/internal/config"
	"trustmebro/cert-service/internal/notifications"
	"trustmebro/cert-service/internal/validation"
	"trustmebro/cert-service/pkg/storage"
)

// NewLogger returns a development logger for "debug" and a JSON production logger otherwise
func NewLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// LoadAWS returns the shared AWS config, or a zero config when no backend needs AWS
func LoadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if !cfg.NeedsAWS() {
		return aws.Config{}, nil
	}
	return cfg.AWS.LoadAWS(ctx)
}

// NewValidationStore opens the configured record store
func NewValidationStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) validation.Store {
	switch cfg.Validation.Backend {
	case config.StoreDynamoDB:
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = cfg.AWS.EndpointOverride()
		})
		return validation.NewDynamoStore(client, cfg.Validation.DynamoDBTable)
	case config.StoreMemory:
		logger.Warn("Using in-memory validation store; records are lost on restart")
		return validation.NewMemoryStore(time.Minute)
	default:
		client := validation.NewRedisClient(validation.RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		store := validation.NewRedisStore(client, cfg.Redis.KeyPrefix)

		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			// the server still starts; /health reports the outage
			logger.Warn("Redis not reachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return store
	}
}

// NewDocumentStore opens the configured document storage
func NewDocumentStore(cfg *config.Config, awsCfg aws.Config) (storage.DocumentStore, error) {
	if cfg.Documents.Backend == config.StorageS3 {
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = cfg.AWS.EndpointOverride()
			o.UsePathStyle = cfg.AWS.Endpoint != ""
		})
		return storage.NewS3Store(client, cfg.Documents.S3Bucket, cfg.Documents.S3Prefix), nil
	}
	return storage.NewLocalStore(filepath.Clean(cfg.Documents.Dir))
}

// NewPublisher returns an SNS publisher when a topic is configured and a no-op otherwise
func NewPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) notifications.Publisher {
	if cfg.Notifications.SNSTopicARN == "" {
		return notifications.NopPublisher{}
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = cfg.AWS.EndpointOverride()
	})
	return notifications.NewSNSPublisher(client, cfg.Notifications.SNSTopicARN, logger)
}
