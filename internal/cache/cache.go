// Package cache is the optional memoization layer in front of the upstream
// APIs. The default Layer is Nop: every call goes to the network.
package cache

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/nitesh/gamefeed/internal/metrics"
)

// Layer memoizes upstream response bodies by key.
type Layer interface {
	Fetch(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, error)
}

// Nop calls fn every time.
type Nop struct{}

// Fetch implements Layer.
func (Nop) Fetch(ctx context.Context, _ string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	return fn(ctx)
}

// credentialParams are dropped from cache keys.
var credentialParams = []string{"apiKey", "client_id"}

// Key builds a cache key from the endpoint and its query parameters, without
// credentials. url.Values.Encode sorts by name, so equal requests share a key.
func Key(endpoint string, params url.Values) string {
	clean := url.Values{}
	for k, v := range params {
		clean[k] = v
	}
	for _, k := range credentialParams {
		clean.Del(k)
	}
	return "gamefeed:" + strings.TrimPrefix(endpoint, "/") + "?" + clean.Encode()
}

// Redis stores successful bodies in redis for ttl and coalesces concurrent
// misses on the same key into one upstream call.
type Redis struct {
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   logrus.FieldLogger
}

// NewRedis returns a redis-backed Layer.
func NewRedis(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, log: log.WithField("component", "cache")}
}

// Fetch implements Layer. Redis errors never fail the request; the layer
// falls through to fn.
func (r *Redis) Fetch(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.RecordCache(true)
		return b, nil
	case errors.Is(err, redis.Nil):
		metrics.RecordCache(false)
	default:
		r.log.WithError(err).WithField("key", key).Warn("redis get failed")
		metrics.RecordCache(false)
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		body, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.rdb.Set(ctx, key, body, r.ttl).Err(); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("redis set failed")
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
