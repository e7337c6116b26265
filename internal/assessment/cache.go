package assessment

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"geopolrisk/pkg/contracts/domain"
)

// CachedHHI memoizes HHI computations for the lifetime of the process.
// Reference data never changes mid-run, so entries are never evicted
// and the first computation for a key wins.
//
// Keys canonicalize the scope tuple (sorted member names) so a region
// requested as (A,B) and (B,A) hits the same entry. Failures inside
// the wrapped computation never propagate past this layer: they are
// logged and degrade to the zero result, which is cached like any
// other.
type CachedHHI struct {
	engine *HHIEngine
	logger *slog.Logger

	mu       sync.Mutex
	entries  map[string]domain.HHIResult
	hits     int64
	computes int64
}

// NewCachedHHI wraps an HHI engine with a process-lifetime cache.
func NewCachedHHI(engine *HHIEngine, logger *slog.Logger) *CachedHHI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedHHI{
		engine:  engine,
		logger:  logger,
		entries: make(map[string]domain.HHIResult),
	}
}

// Compute returns the memoized HHI result for the combination,
// computing it on first use.
func (c *CachedHHI) Compute(resource string, year int, scope []string) domain.HHIResult {
	key := cacheKey(resource, year, scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if result, ok := c.entries[key]; ok {
		c.hits++
		return result
	}

	c.computes++
	result, err := c.engine.Compute(resource, year, scope)
	if err != nil {
		c.logger.Debug("HHI computation degraded to zero",
			slog.String("resource", resource),
			slog.Int("year", year),
			slog.String("error", err.Error()))
		result = domain.HHIResult{}
	}
	c.entries[key] = result
	return result
}

// Hits returns the number of lookups served from the cache.
func (c *CachedHHI) Hits() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Computations returns the number of underlying computations performed.
func (c *CachedHHI) Computations() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computes
}

// cacheKey canonicalizes the arguments; member order in the scope does
// not affect the key.
func cacheKey(resource string, year int, scope []string) string {
	members := make([]string, len(scope))
	copy(members, scope)
	sort.Strings(members)
	return fmt.Sprintf("%s|%d|%s", resource, year, strings.Join(members, ","))
}
