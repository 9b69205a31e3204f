// Package feed manages the two paginated discovery streams: the curated
// popular feed and the query feed. Each bucket carries a monotonic epoch;
// a response whose epoch no longer matches its bucket is dropped without
// touching state, which is the only cancellation mechanism. Pagination is
// serialized behind a single continuation token shared by both buckets so
// rapid scroll events cannot double-fetch a page.
package feed

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"launcher-sync/gateway"
	"launcher-sync/registry"
)

// Kind selects one of the two feed buckets.
type Kind int

const (
	// Popular is the curated feed, always sorted by download count.
	Popular Kind = iota
	// Query is the search feed driven by user input and category filters.
	Query
)

func (k Kind) String() string {
	if k == Popular {
		return "popular"
	}
	return "query"
}

// Options fixes the context every request of a session is issued under.
// Changing provider or content type goes through the Set methods, which
// reset both buckets so abandoned requests cannot populate the new view.
type Options struct {
	Provider      registry.Provider
	ContentType   registry.ContentType
	GameVersion   string
	Loader        string
	PageSize      int
	SearchOnEmpty bool
}

// Snapshot is a copy of one bucket's observable state.
type Snapshot struct {
	Hits       []registry.Project
	Offset     int
	TotalHits  int
	HasMore    bool
	Loading    bool
	Paginating bool
	Err        error
}

// moreToken marks one continuation request in flight. Pointer identity
// decides ownership: only the request holding the current token clears it.
type moreToken struct {
	kind  Kind
	epoch uint64
}

type bucket struct {
	epoch      uint64
	hits       []registry.Project
	offset     int
	totalHits  int
	hasMore    bool
	loading    bool
	err        error
	query      string
	categories []string
}

func (b *bucket) clear() {
	b.hits = nil
	b.offset = 0
	b.totalHits = 0
	b.hasMore = false
	b.loading = false
	b.err = nil
	b.query = ""
	b.categories = nil
}

// Session holds the feed state for one discovery surface. All methods are
// safe for concurrent use; fetches run inside the calling goroutine and
// their results are applied only if still current.
type Session struct {
	mu       sync.Mutex
	reg      gateway.Registry
	log      *zap.SugaredLogger
	opts     Options
	buckets  [2]bucket
	more     *moreToken
	onChange func()
}

// NewSession creates a feed session over reg. A non-positive page size
// falls back to 20.
func NewSession(reg gateway.Registry, opts Options, logger *zap.SugaredLogger) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	return &Session{reg: reg, log: logger, opts: opts}
}

// OnChange registers a callback invoked after every observable state
// change, outside the session lock.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// requestLocked builds the registry query for one page. Empty queries sort
// by popularity, non-empty by relevance.
func (s *Session) requestLocked(query string, categories []string, offset int) gateway.SearchQuery {
	sort := registry.SortPopularity
	if query != "" {
		sort = registry.SortRelevance
	}
	return gateway.SearchQuery{
		Provider:    s.opts.Provider,
		Query:       query,
		ContentType: s.opts.ContentType,
		GameVersion: s.opts.GameVersion,
		Loader:      s.opts.Loader,
		Categories:  categories,
		Limit:       s.opts.PageSize,
		Offset:      offset,
		Sort:        sort,
	}
}

// Search resets the query bucket and fetches its first page. An empty
// query with no category filter clears the feed without a registry call
// unless the session was configured to search on empty input.
func (s *Session) Search(ctx context.Context, query string, categories []string) error {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	b := &s.buckets[Query]
	b.epoch++
	epoch := b.epoch
	b.clear()
	b.query = query
	b.categories = append([]string(nil), categories...)
	if s.more != nil && s.more.kind == Query {
		s.more = nil
	}

	if query == "" && len(categories) == 0 && !s.opts.SearchOnEmpty {
		s.mu.Unlock()
		s.changed()
		return nil
	}

	b.hasMore = true
	b.loading = true
	req := s.requestLocked(query, b.categories, 0)
	s.mu.Unlock()
	s.changed()

	page, err := s.reg.Search(ctx, req)
	return s.completeInitiating(Query, epoch, req, page, err)
}

// LoadPopular resets the popular bucket and fetches its first page. The
// popular feed always fetches; the search-on-empty switch gates only the
// query bucket.
func (s *Session) LoadPopular(ctx context.Context) error {
	s.mu.Lock()
	b := &s.buckets[Popular]
	b.epoch++
	epoch := b.epoch
	b.clear()
	b.hasMore = true
	b.loading = true
	if s.more != nil && s.more.kind == Popular {
		s.more = nil
	}
	req := s.requestLocked("", nil, 0)
	s.mu.Unlock()
	s.changed()

	page, err := s.reg.Search(ctx, req)
	return s.completeInitiating(Popular, epoch, req, page, err)
}

// completeInitiating applies the response of a reset fetch, unless the
// bucket has moved to a newer epoch in the meantime.
func (s *Session) completeInitiating(kind Kind, epoch uint64, req gateway.SearchQuery, page gateway.SearchPage, err error) error {
	s.mu.Lock()
	b := &s.buckets[kind]
	if b.epoch != epoch {
		s.mu.Unlock()
		return nil
	}
	b.loading = false
	if err != nil {
		b.err = err
		s.mu.Unlock()
		s.changed()
		s.log.Warnw("Feed fetch failed", "feed", kind.String(), "error", err)
		return err
	}
	b.err = nil
	b.hits = append(b.hits, page.Hits...)
	b.offset = len(page.Hits)
	b.totalHits = page.TotalHits
	b.hasMore = page.HasMore(req.Limit, b.offset)
	s.mu.Unlock()
	s.changed()
	return nil
}

// LoadMore fetches the next page of a bucket. It is a no-op while any
// continuation is in flight, while the bucket itself is loading, or when
// the bucket has no further pages. The request context (query, filters,
// offset) is captured here, not at completion, so a concurrent option
// change cannot redirect an in-flight page.
func (s *Session) LoadMore(ctx context.Context, kind Kind) error {
	s.mu.Lock()
	b := &s.buckets[kind]
	if s.more != nil || b.loading || !b.hasMore {
		s.mu.Unlock()
		return nil
	}
	tok := &moreToken{kind: kind, epoch: b.epoch}
	s.more = tok
	req := s.requestLocked(b.query, b.categories, b.offset)
	s.mu.Unlock()
	s.changed()

	page, err := s.reg.Search(ctx, req)

	s.mu.Lock()
	if s.more == tok {
		s.more = nil
	}
	if b.epoch != tok.epoch {
		s.mu.Unlock()
		s.changed()
		return nil
	}
	if err != nil {
		b.err = err
		s.mu.Unlock()
		s.changed()
		s.log.Warnw("Feed pagination failed", "feed", kind.String(), "offset", req.Offset, "error", err)
		return err
	}
	b.err = nil
	b.hits = append(b.hits, page.Hits...)
	b.offset += len(page.Hits)
	b.totalHits = page.TotalHits
	b.hasMore = page.HasMore(req.Limit, b.offset)
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Session) resetLocked() {
	for k := range s.buckets {
		s.buckets[k].epoch++
		s.buckets[k].clear()
	}
	s.more = nil
}

// Reset clears both buckets and bumps both epochs so every in-flight
// response becomes stale.
func (s *Session) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.changed()
}

// SetProvider switches the registry provider and resets both buckets.
func (s *Session) SetProvider(p registry.Provider) {
	s.mu.Lock()
	s.opts.Provider = p
	s.resetLocked()
	s.mu.Unlock()
	s.changed()
}

// SetContentType switches the content bucket and resets both feeds.
func (s *Session) SetContentType(ct registry.ContentType) {
	s.mu.Lock()
	s.opts.ContentType = ct
	s.resetLocked()
	s.mu.Unlock()
	s.changed()
}

// Provider returns the provider the session currently targets.
func (s *Session) Provider() registry.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Provider
}

// ContentType returns the content bucket the session currently targets.
func (s *Session) ContentType() registry.ContentType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.ContentType
}

// State returns a copy of one bucket's observable state.
func (s *Session) State(kind Kind) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &s.buckets[kind]
	return Snapshot{
		Hits:       append([]registry.Project(nil), b.hits...),
		Offset:     b.offset,
		TotalHits:  b.totalHits,
		HasMore:    b.hasMore,
		Loading:    b.loading,
		Paginating: s.more != nil && s.more.kind == kind,
		Err:        b.err,
	}
}
