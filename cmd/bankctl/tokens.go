package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brankadelic/Banka-1-Mobile/internal/config"
	"github.com/brankadelic/Banka-1-Mobile/pkg/bankingclient"
	"github.com/brankadelic/Banka-1-Mobile/pkg/tokenstore"
	"github.com/redis/go-redis/v9"
)

// tokenSink is a token source that can also be written to.
type tokenSink interface {
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type fileSink struct {
	file *tokenstore.File
}

func (s fileSink) Save(ctx context.Context, token string) error { return s.file.Save(token) }
func (s fileSink) Clear(ctx context.Context) error               { return s.file.Clear() }

type redisSink struct {
	store *tokenstore.RedisStore
	now   func() time.Time
}

// Save keeps the token in redis until the token's own expiry.
func (s redisSink) Save(ctx context.Context, token string) error {
	var ttl time.Duration
	if claims, err := tokenstore.ParseClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
		ttl = claims.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return fmt.Errorf("token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
		}
	}
	return s.store.Save(ctx, token, ttl)
}

func (s redisSink) Clear(ctx context.Context) error { return s.store.Clear(ctx) }

// newTokenSource picks the token provider configured by BANKING_TOKEN_SOURCE. The sink is
// nil for read-only sources. The returned close func must always be called.
func newTokenSource(cfg config.Config) (bankingclient.TokenProvider, tokenSink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.TokenSource {
	case config.TokenSourceStatic:
		return tokenstore.Static(cfg.Token), nil, noop, nil
	case config.TokenSourceEnv:
		return tokenstore.Env("BANKING_TOKEN"), nil, noop, nil
	case config.TokenSourceRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("failed to parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		store := tokenstore.NewRedisStore(rdb, cfg.TokenRedisKey)
		return store, redisSink{store: store, now: time.Now}, rdb.Close, nil
	default:
		file := tokenstore.NewFile(cfg.TokenFile)
		return file, fileSink{file: file}, noop, nil
	}
}
