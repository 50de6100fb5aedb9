package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/pkg/config"
	"github.com/zatekoja/healthcare-chatbot/backend/pkg/retry"
)

// connectRetry is short: the API runs without Redis, so a missing server
// should not hold up startup for long.
var connectRetry = retry.Config{
	MaxAttempts:     3,
	InitialDelay:    200 * time.Millisecond,
	MaxDelay:        time.Second,
	BackoffFactor:   2.0,
	MaxTotalTimeout: 5 * time.Second,
}

// Client wraps the go-redis client shared by the cache adapter, the event
// bus and the health check.
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis and pings it before returning.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	err := retry.DoWithLog(context.Background(), connectRetry, "redis", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}, func(attempt int, err error, next time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Str("addr", cfg.RedisAddr()).Msg("redis not reachable")
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(client *redis.Client) *Client {
	return &Client{client: client}
}

func (c *Client) Client() *redis.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Ping satisfies handlers.Pinger.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
