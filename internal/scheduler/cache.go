package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/configstore"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// DefaultCacheTTL is how long a tenant's resolved provider is reused before
// the config row is consulted again. There is no write-through invalidation:
// config changes become visible only after expiry.
const DefaultCacheTTL = 5 * time.Minute

// ConfigSource loads tenant scheduler configs.
type ConfigSource interface {
	Get(ctx context.Context, tenantID string) (*configstore.TenantSchedulerConfig, error)
}

// Factory builds a concrete provider from a tenant config.
type Factory interface {
	Build(ctx context.Context, cfg *configstore.TenantSchedulerConfig) (Provider, error)
}

type cacheEntry struct {
	provider Provider
	config   *configstore.TenantSchedulerConfig
	fetched  time.Time
}

// Cache resolves and memoizes the provider serving each tenant.
type Cache struct {
	source  ConfigSource
	factory Factory
	ttl     time.Duration
	logger  *logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates a provider cache with the given TTL; ttl <= 0 uses
// DefaultCacheTTL.
func NewCache(source ConfigSource, factory Factory, ttl time.Duration, logger *logging.Logger) *Cache {
	if source == nil {
		panic("scheduler: config source required")
	}
	if factory == nil {
		panic("scheduler: factory required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{
		source:  source,
		factory: factory,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// ProviderFor returns the provider serving the tenant, together with the
// config it was built from.
func (c *Cache) ProviderFor(ctx context.Context, tenantID string) (Provider, *configstore.TenantSchedulerConfig, error) {
	c.mu.Lock()
	entry, ok := c.entries[tenantID]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.provider, entry.config, nil
	}

	cfg, err := c.source.Get(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	provider, err := c.factory.Build(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.entries[tenantID] = cacheEntry{provider: provider, config: cfg, fetched: c.now()}
	c.mu.Unlock()

	c.logger.Debug("scheduler provider resolved",
		"tenant_id", tenantID,
		"scheduler_type", string(cfg.SchedulerType),
	)
	return provider, cfg, nil
}

// ProviderOnly adapts the cache for callers that need the provider but not
// the tenant config it was built from.
type ProviderOnly struct {
	Cache *Cache
}

func (p ProviderOnly) ProviderFor(ctx context.Context, tenantID string) (Provider, error) {
	provider, _, err := p.Cache.ProviderFor(ctx, tenantID)
	return provider, err
}

// Invalidate drops the cached provider for a tenant. Nothing calls this on
// config change today; it exists for tests and future write-through.
func (c *Cache) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}
