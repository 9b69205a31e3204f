// Package resolver links manually installed files to their registry
// projects. Matching is heuristic and runs against every configured
// provider; when items match on more than one provider the caller makes a
// single source decision for the whole batch. Declining that decision
// aborts resolution with zero mutations.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"launcher-sync/gateway"
	"launcher-sync/match"
	"launcher-sync/registry"
	"launcher-sync/store"
)

// searchLimit bounds the per-provider search issued for each item.
const searchLimit = 10

// Report is the structured outcome of a resolution run.
type Report struct {
	Scanned     int
	Matched     int
	Updated     int
	BothSources int
}

// SourceChooser decides which provider wins for items that matched on
// both. It receives the number of ambiguous items and returns false to
// abort resolution entirely.
type SourceChooser func(ambiguous int) (registry.Provider, bool)

// Instance is the slice of the local store the resolver writes to.
type Instance interface {
	LinkMetadata(ctx context.Context, instanceID string, ct registry.ContentType, filename string, link store.MetadataLink) error
}

// Resolver resolves registry metadata for one instance's manual items.
type Resolver struct {
	reg      gateway.Registry
	inst     Instance
	instance store.Instance
	log      *zap.SugaredLogger
}

// New builds a Resolver operating on the given instance.
func New(reg gateway.Registry, inst Instance, instance store.Instance, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{reg: reg, inst: inst, instance: instance, log: logger}
}

// proposal holds the per-provider matches found for one item.
type proposal struct {
	item    store.Item
	matches map[registry.Provider]registry.Project
}

// candidates filters items down to unlinked ones, optionally restricted to
// a filename subset. Linked items are never candidates, which makes
// resolution idempotent.
func candidates(items []store.Item, filenames []string) []store.Item {
	var subset map[string]bool
	if len(filenames) > 0 {
		subset = make(map[string]bool, len(filenames))
		for _, f := range filenames {
			subset[f] = true
		}
	}
	var out []store.Item
	for _, item := range items {
		if item.Linked() {
			continue
		}
		if subset != nil && !subset[item.Filename] {
			continue
		}
		out = append(out, item)
	}
	return out
}

// scan searches every provider for each candidate item and records which
// providers produced a plausible match. A provider's search failure counts
// as no match on that provider only.
func (r *Resolver) scan(ctx context.Context, items []store.Item) []proposal {
	proposals := make([]proposal, 0, len(items))
	for _, item := range items {
		p := proposal{item: item, matches: make(map[registry.Provider]registry.Project)}

		query := item.Name
		if query == "" {
			query = item.Stem()
		}

		for _, provider := range registry.Providers() {
			page, err := r.reg.Search(ctx, gateway.SearchQuery{
				Provider:    provider,
				Query:       query,
				ContentType: item.ContentType,
				GameVersion: r.instance.GameVersion,
				Loader:      r.instance.Loader,
				Limit:       searchLimit,
				Sort:        registry.SortRelevance,
			})
			if err != nil {
				r.log.Warnw("Metadata search failed",
					zap.String("item", item.DisplayName()),
					zap.String("provider", string(provider)),
					zap.Error(err))
				continue
			}
			if hit, ok := match.FindProject(page.Hits, item); ok {
				p.matches[provider] = hit
			}
		}
		proposals = append(proposals, p)
	}
	return proposals
}

func tally(proposals []proposal) Report {
	rep := Report{Scanned: len(proposals)}
	for _, p := range proposals {
		if len(p.matches) > 0 {
			rep.Matched++
		}
		if len(p.matches) > 1 {
			rep.BothSources++
		}
	}
	return rep
}

// DryRun scans the given items and reports what a resolution would do
// without persisting anything.
func (r *Resolver) DryRun(ctx context.Context, items []store.Item, filenames []string) Report {
	return tally(r.scan(ctx, candidates(items, filenames)))
}

// Resolve runs the full two-phase resolution. The dry-run phase counts
// matches; if any item matched on both providers, choose is asked once for
// the whole batch. A declined (or absent) chooser aborts before anything
// is persisted. The decision phase re-runs matching and links each matched
// item, leaving filenames and file contents untouched.
func (r *Resolver) Resolve(ctx context.Context, items []store.Item, filenames []string, choose SourceChooser) Report {
	pool := candidates(items, filenames)
	rep := tally(r.scan(ctx, pool))

	var preferred registry.Provider
	if rep.BothSources > 0 {
		if choose == nil {
			r.log.Infow("Ambiguous matches with no source decision, aborting",
				zap.Int("ambiguous", rep.BothSources))
			return rep
		}
		p, ok := choose(rep.BothSources)
		if !ok {
			r.log.Infow("Source decision declined, aborting",
				zap.Int("ambiguous", rep.BothSources))
			return rep
		}
		preferred = p
	}

	for _, p := range r.scan(ctx, pool) {
		if len(p.matches) == 0 {
			continue
		}

		var chosen registry.Project
		if len(p.matches) > 1 {
			hit, ok := p.matches[preferred]
			if !ok {
				continue
			}
			chosen = hit
		} else {
			for _, hit := range p.matches {
				chosen = hit
			}
		}

		link := store.MetadataLink{Provider: chosen.Provider, ProjectID: chosen.ID}
		if vid, label, ok := r.installedVersion(ctx, chosen, p.item); ok {
			link.VersionID = vid
			link.Version = label
		}

		err := r.inst.LinkMetadata(ctx, r.instance.UID, p.item.ContentType, p.item.Filename, link)
		if err != nil {
			r.log.Warnw("Failed to link metadata",
				zap.String("item", p.item.DisplayName()), zap.Error(err))
			continue
		}
		rep.Updated++
		r.log.Infow("Linked manual item",
			zap.String("item", p.item.DisplayName()),
			zap.String("provider", string(chosen.Provider)),
			zap.String("project", chosen.ID))
	}
	return rep
}

// installedVersion looks for the project version whose file matches the
// installed filename. When no version carries that exact file the linkage
// stays version-less and the next update check falls back to label
// comparison.
func (r *Resolver) installedVersion(ctx context.Context, project registry.Project, item store.Item) (string, string, bool) {
	versions, err := r.reg.ProjectVersions(ctx, project.Provider, project.ID,
		r.instance.GameVersion, r.instance.Loader, item.ContentType)
	if err != nil {
		r.log.Warnw("Failed to list versions while linking",
			zap.String("project", project.ID), zap.Error(err))
		return "", "", false
	}
	for _, v := range versions {
		for _, f := range v.Files {
			if f.Filename == item.Filename {
				return v.ID, v.Label, true
			}
		}
	}
	return "", "", false
}
