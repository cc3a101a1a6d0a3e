package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// NewClient creates a go-redis client for the settings.
// FT.* replies are parsed in their RESP2 form, so the protocol is pinned.
func NewClient(settings domain.RedisSettings) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         settings.Addr,
		Username:     settings.Username,
		Password:     settings.Password,
		DB:           settings.DB,
		Protocol:     2,
		DialTimeout:  settings.DialTimeout,
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
	})
}

// Open connects to the server and verifies the connection with PING.
func Open(ctx context.Context, settings domain.RedisSettings) (*Store, error) {
	if settings.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is empty", domain.ErrInvalidInput)
	}

	client := NewClient(settings)
	pingCtx := ctx
	if settings.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, settings.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", settings.Addr, mapError(err))
	}

	logger.Debug("Connected to redis at %s (db %d)", settings.Addr, settings.DB)
	return NewStore(client, Options{CommandTimeout: settings.CommandTimeout}), nil
}
