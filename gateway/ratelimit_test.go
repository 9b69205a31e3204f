package gateway

import (
	"context"
	"testing"
	"time"

	"launcher-sync/registry"
)

type countingRegistry struct {
	searches int
}

func (c *countingRegistry) Search(ctx context.Context, q SearchQuery) (SearchPage, error) {
	c.searches++
	return SearchPage{}, nil
}

func (c *countingRegistry) Project(ctx context.Context, p registry.Provider, id string) (registry.Project, error) {
	return registry.Project{}, nil
}

func (c *countingRegistry) ProjectVersions(ctx context.Context, p registry.Provider, id, gv, loader string, ct registry.ContentType) ([]registry.Version, error) {
	return nil, nil
}

func TestLimitedPassesThrough(t *testing.T) {
	inner := &countingRegistry{}
	l := NewLimited(inner, 100)

	for i := 0; i < 3; i++ {
		if _, err := l.Search(context.Background(), SearchQuery{Provider: registry.Modrinth}); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	}
	if inner.searches != 3 {
		t.Errorf("inner saw %d searches, want 3", inner.searches)
	}
}

func TestLimitedSeparatePerProvider(t *testing.T) {
	inner := &countingRegistry{}
	// 1 rps with burst 1: a second request on the same provider would
	// have to wait, but a different provider has its own bucket.
	l := NewLimited(inner, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if _, err := l.Search(ctx, SearchQuery{Provider: registry.Modrinth}); err != nil {
		t.Fatalf("Search(modrinth) error = %v", err)
	}
	if _, err := l.Search(ctx, SearchQuery{Provider: registry.CurseForge}); err != nil {
		t.Fatalf("Search(curseforge) error = %v", err)
	}
	if inner.searches != 2 {
		t.Errorf("inner saw %d searches, want 2", inner.searches)
	}
}

func TestLimitedRespectsContext(t *testing.T) {
	inner := &countingRegistry{}
	l := NewLimited(inner, 1)

	ctx := context.Background()
	if _, err := l.Search(ctx, SearchQuery{Provider: registry.Modrinth}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	// Bucket is drained; a cancelled context must fail fast instead of
	// waiting a full second.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	start := time.Now()
	if _, err := l.Search(cancelled, SearchQuery{Provider: registry.Modrinth}); err == nil {
		t.Error("Search() with cancelled context should fail")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancelled wait took %v", elapsed)
	}
}

func TestLimitedZeroDisables(t *testing.T) {
	inner := &countingRegistry{}
	l := NewLimited(inner, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 50; i++ {
		if _, err := l.Search(ctx, SearchQuery{Provider: registry.Modrinth}); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	}
	if inner.searches != 50 {
		t.Errorf("inner saw %d searches, want 50", inner.searches)
	}
}

func TestSearchPageHasMore(t *testing.T) {
	tests := []struct {
		name       string
		hits       int
		total      int
		limit      int
		nextOffset int
		want       bool
	}{
		{"full page more remaining", 20, 45, 20, 20, true},
		{"full page exactly consumed", 20, 40, 20, 40, false},
		{"short page", 5, 45, 20, 45, false},
		{"empty", 0, 0, 20, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SearchPage{Hits: make([]registry.Project, tt.hits), TotalHits: tt.total}
			if got := p.HasMore(tt.limit, tt.nextOffset); got != tt.want {
				t.Errorf("HasMore(%d, %d) = %v, want %v", tt.limit, tt.nextOffset, got, tt.want)
			}
		})
	}
}
