package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/prometheus"
)

// ComputeFunc produces a canonical form when the cache cannot.  It is an
// alias so callers can pass plain function literals against interfaces that
// spell the signature out.
type ComputeFunc = func(ctx context.Context) (string, error)

// CanonicalCache memoizes canonical-form results keyed by a hash of the
// record payload.  Concurrent requests for the same payload collapse into a
// single toolkit call via singleflight; Redis failures degrade to computing
// directly, never to a request failure.
type CanonicalCache struct {
	client  *Client
	prefix  string
	ttl     time.Duration
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	group   singleflight.Group
}

// CanonicalCacheOption configures a CanonicalCache.
type CanonicalCacheOption func(*CanonicalCache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) CanonicalCacheOption {
	return func(c *CanonicalCache) { c.prefix = prefix }
}

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) CanonicalCacheOption {
	return func(c *CanonicalCache) { c.ttl = ttl }
}

// WithMetrics wires hit/miss counters.
func WithMetrics(m *prometheus.AppMetrics) CanonicalCacheOption {
	return func(c *CanonicalCache) { c.metrics = m }
}

// NewCanonicalCache builds a cache over an established client.
func NewCanonicalCache(client *Client, log logging.Logger, opts ...CanonicalCacheOption) *CanonicalCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &CanonicalCache{
		client:  client,
		prefix:  "molscreen:canon:",
		ttl:     24 * time.Hour,
		metrics: prometheus.NewNopAppMetrics(),
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// key derives the cache key for a payload.  Payloads are opaque and can be
// large, so the key is a digest rather than the payload itself.  Stereo and
// flat canonical forms of the same payload are distinct entries.
func (c *CanonicalCache) key(payload []byte, useStereo bool) string {
	sum := sha256.Sum256(payload)
	suffix := ":flat"
	if useStereo {
		suffix = ":stereo"
	}
	return c.prefix + hex.EncodeToString(sum[:]) + suffix
}

// jitterTTL spreads expirations by ±10% to avoid synchronized refill storms.
func (c *CanonicalCache) jitterTTL() time.Duration {
	jitter := float64(c.ttl) * 0.1 * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(jitter)
}

// GetOrCompute returns the canonical form for payload, consulting the cache
// first and falling back to compute.  The computed value is written back
// best-effort; a write failure is logged and the value still returned.
func (c *CanonicalCache) GetOrCompute(ctx context.Context, payload []byte, useStereo bool, compute ComputeFunc) (string, error) {
	key := c.key(payload, useStereo)

	val, err := c.client.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.metrics.CacheHitsTotal.WithLabelValues("canonical").Inc()
		return val, nil
	case err == redis.Nil:
		c.metrics.CacheMissesTotal.WithLabelValues("canonical").Inc()
	default:
		// Cache outage: log once per call and fall through to compute.
		c.logger.Warn("canonical cache read failed", logging.Err(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		form, err := compute(ctx)
		if err != nil {
			return "", err
		}
		if setErr := c.client.rdb.Set(ctx, key, form, c.jitterTTL()).Err(); setErr != nil {
			c.logger.Warn("canonical cache write failed", logging.Err(setErr))
		}
		return form, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached forms for a payload, both stereo and flat.
func (c *CanonicalCache) Invalidate(ctx context.Context, payload []byte) error {
	return c.client.rdb.Del(ctx, c.key(payload, false), c.key(payload, true)).Err()
}
