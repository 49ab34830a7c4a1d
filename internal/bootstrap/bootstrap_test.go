package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trustmebro/cert-service/internal/config"
	"trustmebro/cert-service/internal/notifications"
	"trustmebro/cert-service/internal/validation"
	"trustmebro/cert-service/pkg/storage"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("chatty")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewValidationStore_Memory(t *testing.T) {
	cfg := &config.Config{Validation: config.ValidationConfig{Backend: config.StoreMemory}}

	store := NewValidationStore(context.Background(), cfg, aws.Config{}, zap.NewNop())
	defer store.Close()
	assert.IsType(t, &validation.MemoryStore{}, store)
}

func TestNewValidationStore_Dynamo(t *testing.T) {
	cfg := &config.Config{Validation: config.ValidationConfig{Backend: config.StoreDynamoDB, DynamoDBTable: "records"}}

	store := NewValidationStore(context.Background(), cfg, aws.Config{Region: "eu-central-1"}, zap.NewNop())
	assert.IsType(t, &validation.DynamoStore{}, store)
}

func TestNewValidationStore_RedisUnreachable(t *testing.T) {
	cfg := &config.Config{
		Validation: config.ValidationConfig{Backend: config.StoreRedis},
		Redis:      config.RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond},
	}

	// construction succeeds even when Redis is down
	store := NewValidationStore(context.Background(), cfg, aws.Config{}, zap.NewNop())
	defer store.Close()
	assert.IsType(t, &validation.RedisStore{}, store)
}

func TestNewDocumentStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	cfg := &config.Config{Documents: config.DocumentsConfig{Backend: config.StorageLocal, Dir: dir}}

	store, err := NewDocumentStore(cfg, aws.Config{})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, store)
	assert.DirExists(t, dir)

	cfg.Documents = config.DocumentsConfig{Backend: config.StorageS3, S3Bucket: "certs"}
	store, err = NewDocumentStore(cfg, aws.Config{Region: "eu-central-1"})
	require.NoError(t, err)
	assert.IsType(t, &storage.S3Store{}, store)
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{}
	assert.IsType(t, notifications.NopPublisher{}, NewPublisher(cfg, aws.Config{}, zap.NewNop()))

	cfg.Notifications.SNSTopicARN = "arn:aws:sns:eu-central-1:000000000000:certs"
	assert.IsType(t, &notifications.SNSPublisher{}, NewPublisher(cfg, aws.Config{Region: "eu-central-1"}, zap.NewNop()))
}

func TestLoadAWS_NotNeeded(t *testing.T) {
	cfg := &config.Config{}
	awsCfg, err := LoadAWS(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, awsCfg.Region)
}
