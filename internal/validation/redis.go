package validation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of redis.UniversalClient the store uses
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore keeps validation records as JSON strings with a native expiry
type RedisStore struct {
	client    RedisClient
	keyPrefix string
	closeOnce sync.Once
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient opens a long-lived client; connections are established lazily
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
}

// NewRedisStore wraps an existing client
func NewRedisStore(client RedisClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Put(ctx context.Context, id string, record Record, ttl time.Duration) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to encode validation record: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+id, data, ttl).Err(); err != nil {
		return unreachable("set", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		// server replied, e.g. WRONGTYPE: the key holds something that is not a record
		var replyErr redis.Error
		if errors.As(err, &replyErr) {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil, unreachable("get", err)
	}
	return DecodeRecord(data)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unreachable("ping", err)
	}
	return nil
}

// Close closes the underlying client. Safe to call multiple times.
func (s *RedisStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.client.Close()
	})
	return err
}
