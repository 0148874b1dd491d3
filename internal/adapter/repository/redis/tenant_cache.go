package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/storesync/internal/adapter/metrics"
	"github.com/V4T54L/storesync/internal/domain"
)

const tenantKeyPrefix = "tenant:"

// TenantCache is a read-through cache in front of a TenantRepository. Tenant
// resolution runs on every webhook, so the hot path reads Redis first and
// falls back to the underlying directory on a miss. Entries are TTL-bounded;
// rotating a secret through UpsertSecret invalidates the entry immediately so
// a rotated-out secret never authenticates past the rotation. A Redis outage
// degrades to direct directory reads rather than failing ingestion.
type TenantCache struct {
	next    domain.TenantRepository
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.IngestMetrics
}

// NewTenantCache wraps next with a Redis-backed cache.
func NewTenantCache(next domain.TenantRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.IngestMetrics) *TenantCache {
	return &TenantCache{
		next:    next,
		client:  client,
		ttl:     ttl,
		logger:  logger.With("component", "tenant_cache"),
		metrics: m,
	}
}

// ResolveByDomain serves the tenant from cache when possible. Negative
// results are never cached: an attacker probing unknown domains must not be
// able to fill the cache, and a freshly provisioned tenant must resolve on
// its first webhook.
func (c *TenantCache) ResolveByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	key := tenantKeyPrefix + shopDomain

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var t domain.Tenant
		if err := json.Unmarshal(data, &t); err == nil {
			if c.metrics != nil {
				c.metrics.TenantCacheHits.Inc()
			}
			return &t, nil
		}
		c.logger.Warn("discarding undecodable tenant cache entry", "shop_domain", shopDomain)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("tenant cache read failed, falling back to directory", "error", err)
	}

	if c.metrics != nil {
		c.metrics.TenantCacheMisses.Inc()
	}

	t, err := c.next.ResolveByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(t); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("tenant cache write failed", "error", err)
		}
	}
	return t, nil
}

// UpsertSecret rotates the secret in the directory and drops the cached entry.
func (c *TenantCache) UpsertSecret(ctx context.Context, shopDomain, webhookSecret string) (string, error) {
	id, err := c.next.UpsertSecret(ctx, shopDomain, webhookSecret)
	if err != nil {
		return "", err
	}
	if err := c.client.Del(ctx, tenantKeyPrefix+shopDomain).Err(); err != nil {
		// The stale entry still expires at the TTL; log so operators know
		// rotation may lag by up to that long.
		c.logger.Warn("failed to invalidate tenant cache entry after secret rotation", "shop_domain", shopDomain, "error", err)
	}
	return id, nil
}

// TouchActivity passes through to the directory.
func (c *TenantCache) TouchActivity(ctx context.Context, tenantID string) error {
	return c.next.TouchActivity(ctx, tenantID)
}
