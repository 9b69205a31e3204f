// Package gateway defines the registry-side surface the sync engine talks
// to. Implementations adapt a concrete content registry (or an offline
// catalog of one) to provider-neutral types; everything above this package
// is free of provider branching.
package gateway

import (
	"context"

	"launcher-sync/registry"
)

// SearchQuery describes one registry search request.
type SearchQuery struct {
	Provider    registry.Provider
	Query       string
	ContentType registry.ContentType
	GameVersion string
	Loader      string
	Categories  []string
	Limit       int
	Offset      int
	Sort        registry.Sort
}

// SearchPage is one page of search results together with the total count
// the registry reports for the whole query.
type SearchPage struct {
	Hits      []registry.Project
	TotalHits int
}

// HasMore reports whether another page can be requested after this one.
// A short page means the results are exhausted even when the reported
// total disagrees.
func (p SearchPage) HasMore(limit, nextOffset int) bool {
	return len(p.Hits) == limit && nextOffset < p.TotalHits
}

// Registry is the read surface of a content registry.
type Registry interface {
	// Search runs a paginated project search.
	Search(ctx context.Context, q SearchQuery) (SearchPage, error)

	// Project fetches one project by its provider-specific ID.
	Project(ctx context.Context, provider registry.Provider, projectID string) (registry.Project, error)

	// ProjectVersions lists the versions of a project compatible with the
	// given game version and loader, newest first.
	ProjectVersions(ctx context.Context, provider registry.Provider, projectID, gameVersion, loader string, ct registry.ContentType) ([]registry.Version, error)
}
