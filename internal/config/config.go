package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Document storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	Redis         RedisConfig         `json:"redis"`
	Validation    ValidationConfig    `json:"validation"`
	Documents     DocumentsConfig     `json:"documents"`
	Assets        AssetsConfig        `json:"assets"`
	AWS           AWSConfig           `json:"aws"`
	Notifications NotificationsConfig `json:"notifications"`
	Logging       LoggingConfig       `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	BaseURL      string        `json:"base_url"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// RedisConfig represents the validation store connection
type RedisConfig struct {
	Addr        string        `json:"addr"`
	Password    string        `json:"password"`
	DB          int           `json:"db"`
	KeyPrefix   string        `json:"key_prefix"`
	DialTimeout time.Duration `json:"dial_timeout"`
}

// ValidationConfig selects the record backend and lifetime
type ValidationConfig struct {
	Backend       string        `json:"backend"`
	RecordTTL     time.Duration `json:"record_ttl"`
	DynamoDBTable string        `json:"dynamodb_table"`
}

// DocumentsConfig controls where rendered PDFs live
type DocumentsConfig struct {
	Backend             string        `json:"backend"`
	Dir                 string        `json:"dir"`
	S3Bucket            string        `json:"s3_bucket"`
	S3Prefix            string        `json:"s3_prefix"`
	DeleteAfterDownload bool          `json:"delete_after_download"`
	SweepSchedule       string        `json:"sweep_schedule"`
	MaxAge              time.Duration `json:"max_age"`
}

// AssetsConfig locates badges, signatures and the font
type AssetsConfig struct {
	Dir      string `json:"dir"`
	FontPath string `json:"font_path"`
}

// AWSConfig holds AWS client settings. Without static keys the default credential chain is used.
type AWSConfig struct {
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
}

// NotificationsConfig
type NotificationsConfig struct {
	SNSTopicARN string `json:"sns_topic_arn"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	// Default config
	config := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			BaseURL:      "http://localhost:8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 5 * time.Second,
		},
		Validation: ValidationConfig{
			Backend:   StoreRedis,
			RecordTTL: 8760 * time.Hour,
		},
		Documents: DocumentsConfig{
			Backend: StorageLocal,
			Dir:     "certs",
		},
		Assets: AssetsConfig{
			Dir:      "assets",
			FontPath: "assets/fonts/DejaVuSans.ttf",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		config.Server.BaseURL = baseURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		config.Redis.Password = pass
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		config.Validation.Backend = strings.ToLower(backend)
	}
	if ttl := os.Getenv("RECORD_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid RECORD_TTL %q: %w", ttl, err)
		}
		config.Validation.RecordTTL = d
	}
	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		config.Validation.DynamoDBTable = table
	}
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		config.Documents.Backend = strings.ToLower(backend)
	}
	if dir := os.Getenv("CERTS_DIR"); dir != "" {
		config.Documents.Dir = dir
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Documents.S3Bucket = bucket
	}
	if v := os.Getenv("DELETE_AFTER_DOWNLOAD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DELETE_AFTER_DOWNLOAD %q: %w", v, err)
		}
		config.Documents.DeleteAfterDownload = b
	}
	if schedule := os.Getenv("SWEEP_SCHEDULE"); schedule != "" {
		config.Documents.SweepSchedule = schedule
	}
	if dir := os.Getenv("ASSETS_DIR"); dir != "" {
		config.Assets.Dir = dir
	}
	if font := os.Getenv("FONT_PATH"); font != "" {
		config.Assets.FontPath = font
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		config.AWS.Endpoint = endpoint
	}
	if arn := os.Getenv("SNS_TOPIC_ARN"); arn != "" {
		config.Notifications.SNSTopicARN = arn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	return nil
}

// Validate checks backend names and backend-specific settings
func (c *Config) Validate() error {
	switch c.Validation.Backend {
	case StoreRedis, StoreMemory:
	case StoreDynamoDB:
		if c.Validation.DynamoDBTable == "" {
			return fmt.Errorf("validation.dynamodb_table is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown validation backend %q", c.Validation.Backend)
	}

	switch c.Documents.Backend {
	case StorageLocal:
	case StorageS3:
		if c.Documents.S3Bucket == "" {
			return fmt.Errorf("documents.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown documents backend %q", c.Documents.Backend)
	}

	if c.Validation.RecordTTL < 0 {
		return fmt.Errorf("validation.record_ttl must not be negative")
	}
	if c.Documents.MaxAge < 0 {
		return fmt.Errorf("documents.max_age must not be negative")
	}
	if c.Documents.SweepSchedule != "" && !c.DocumentsExpire() {
		return fmt.Errorf("documents.sweep_schedule needs documents.max_age when validation.record_ttl is 0")
	}
	return nil
}

// DocumentMaxAge is how old a rendered PDF may get before the janitor removes it
func (c *DocumentsConfig) DocumentMaxAge(recordTTL time.Duration) time.Duration {
	if c.MaxAge > 0 {
		return c.MaxAge
	}
	return recordTTL
}

// DocumentsExpire reports whether rendered PDFs have a finite lifetime the janitor can enforce
func (c *Config) DocumentsExpire() bool {
	return c.Documents.DocumentMaxAge(c.Validation.RecordTTL) > 0
}

// NeedsAWS reports whether any configured backend talks to AWS
func (c *Config) NeedsAWS() bool {
	return c.Validation.Backend == StoreDynamoDB ||
		c.Documents.Backend == StorageS3 ||
		c.Notifications.SNSTopicARN != ""
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
