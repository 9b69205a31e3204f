package gateway

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"launcher-sync/registry"
)

// Limited wraps a Registry with a per-provider rate limiter so bulk
// operations cannot hammer a single registry. Each provider gets its own
// token bucket; waiting respects the caller's context.
type Limited struct {
	inner Registry
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[registry.Provider]*rate.Limiter
}

// NewLimited wraps inner with a limiter of rps requests per second per
// provider. A non-positive rps disables limiting.
func NewLimited(inner Registry, rps float64) *Limited {
	limit := rate.Limit(rps)
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	if rps <= 0 {
		limit = rate.Inf
	}
	return &Limited{
		inner:    inner,
		rps:      limit,
		burst:    burst,
		limiters: make(map[registry.Provider]*rate.Limiter),
	}
}

func (l *Limited) limiter(p registry.Provider) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[p]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[p] = lim
	}
	return lim
}

func (l *Limited) wait(ctx context.Context, p registry.Provider) error {
	if err := l.limiter(p).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", p, err)
	}
	return nil
}

func (l *Limited) Search(ctx context.Context, q SearchQuery) (SearchPage, error) {
	if err := l.wait(ctx, q.Provider); err != nil {
		return SearchPage{}, err
	}
	return l.inner.Search(ctx, q)
}

func (l *Limited) Project(ctx context.Context, provider registry.Provider, projectID string) (registry.Project, error) {
	if err := l.wait(ctx, provider); err != nil {
		return registry.Project{}, err
	}
	return l.inner.Project(ctx, provider, projectID)
}

func (l *Limited) ProjectVersions(ctx context.Context, provider registry.Provider, projectID, gameVersion, loader string, ct registry.ContentType) ([]registry.Version, error) {
	if err := l.wait(ctx, provider); err != nil {
		return nil, err
	}
	return l.inner.ProjectVersions(ctx, provider, projectID, gameVersion, loader, ct)
}
