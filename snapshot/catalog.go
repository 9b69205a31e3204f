// Package snapshot serves registry data from an on-disk catalog dump,
// giving the engine a fully offline registry. The dump keeps each
// provider's native payload shape (modrinth/projects.json plus one
// versions file per project, curseforge/mods.json plus one files list per
// mod); payloads are normalized at the read boundary exactly like live
// responses would be.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"launcher-sync/gateway"
	"launcher-sync/registry"
)

// Catalog implements the registry read surface over a catalog directory.
// Project lists are parsed once per provider and cached for the catalog's
// lifetime.
type Catalog struct {
	fs  afero.Fs
	dir string
	log *zap.SugaredLogger

	mu       sync.Mutex
	projects map[registry.Provider][]entry
}

type entry struct {
	proj registry.Project
	ct   registry.ContentType
}

// New builds a Catalog reading from dir on the given filesystem.
func New(fsys afero.Fs, dir string, logger *zap.SugaredLogger) *Catalog {
	return &Catalog{
		fs:       fsys,
		dir:      dir,
		log:      logger,
		projects: make(map[registry.Provider][]entry),
	}
}

// NewOS builds a Catalog reading from dir on the host filesystem.
func NewOS(dir string, logger *zap.SugaredLogger) *Catalog {
	return New(afero.NewOsFs(), dir, logger)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// load parses and caches one provider's project list.
func (c *Catalog) load(p registry.Provider) ([]entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.projects[p]; ok {
		return cached, nil
	}

	var entries []entry
	switch p {
	case registry.Modrinth:
		raw, err := afero.ReadFile(c.fs, filepath.Join(c.dir, "modrinth", "projects.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to read modrinth catalog: %w", err)
		}
		var hits []registry.ModrinthHit
		if err := json.Unmarshal(raw, &hits); err != nil {
			return nil, fmt.Errorf("modrinth catalog is malformed: %w", err)
		}
		for _, h := range hits {
			entries = append(entries, entry{proj: registry.FromModrinthHit(h), ct: h.ContentType()})
		}
	case registry.CurseForge:
		raw, err := afero.ReadFile(c.fs, filepath.Join(c.dir, "curseforge", "mods.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to read curseforge catalog: %w", err)
		}
		var mods []registry.CurseMod
		if err := json.Unmarshal(raw, &mods); err != nil {
			return nil, fmt.Errorf("curseforge catalog is malformed: %w", err)
		}
		for _, m := range mods {
			entries = append(entries, entry{proj: registry.FromCurseMod(m), ct: m.ContentType()})
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}

	c.projects[p] = entries
	c.log.Debugw("Loaded provider catalog",
		zap.String("provider", string(p)), zap.Int("projects", len(entries)))
	return entries, nil
}

// matchesQuery is deliberately loose in both directions: a query may be a
// fragment of the title or slug, and a filename stem used as a query may
// contain the slug or title.
func matchesQuery(e entry, nq string) bool {
	if nq == "" {
		return true
	}
	title := normalize(e.proj.Title)
	slug := normalize(e.proj.Slug)
	if strings.Contains(title, nq) || strings.Contains(slug, nq) {
		return true
	}
	if slug != "" && strings.Contains(nq, slug) {
		return true
	}
	return title != "" && strings.Contains(nq, title)
}

func hasCategories(e entry, want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]bool, len(e.proj.Categories))
	for _, cat := range e.proj.Categories {
		have[normalize(cat)] = true
	}
	for _, w := range want {
		if !have[normalize(w)] {
			return false
		}
	}
	return true
}

// relevance ranks an entry against a query; lower ranks sort first.
func relevance(e entry, nq string) int {
	title := normalize(e.proj.Title)
	slug := normalize(e.proj.Slug)
	switch {
	case title == nq || slug == nq:
		return 0
	case strings.HasPrefix(title, nq):
		return 1
	case strings.Contains(title, nq):
		return 2
	default:
		return 3
	}
}

// Search filters the provider's catalog by content type, query and
// categories, then returns one ordered page.
func (c *Catalog) Search(ctx context.Context, q gateway.SearchQuery) (gateway.SearchPage, error) {
	if err := ctx.Err(); err != nil {
		return gateway.SearchPage{}, err
	}
	entries, err := c.load(q.Provider)
	if err != nil {
		return gateway.SearchPage{}, err
	}

	nq := normalize(q.Query)
	var filtered []entry
	for _, e := range entries {
		if q.ContentType.Valid() && e.ct != q.ContentType {
			continue
		}
		if !matchesQuery(e, nq) {
			continue
		}
		if !hasCategories(e, q.Categories) {
			continue
		}
		filtered = append(filtered, e)
	}

	if q.Sort == registry.SortRelevance && nq != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			ri, rj := relevance(filtered[i], nq), relevance(filtered[j], nq)
			if ri != rj {
				return ri < rj
			}
			return filtered[i].proj.Downloads > filtered[j].proj.Downloads
		})
	} else {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].proj.Downloads > filtered[j].proj.Downloads
		})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	total := len(filtered)
	start := q.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	hits := make([]registry.Project, 0, end-start)
	for _, e := range filtered[start:end] {
		hits = append(hits, e.proj)
	}
	return gateway.SearchPage{Hits: hits, TotalHits: total}, nil
}

// Project returns one catalog entry by provider-scoped ID.
func (c *Catalog) Project(ctx context.Context, provider registry.Provider, projectID string) (registry.Project, error) {
	if err := ctx.Err(); err != nil {
		return registry.Project{}, err
	}
	entries, err := c.load(provider)
	if err != nil {
		return registry.Project{}, err
	}
	for _, e := range entries {
		if e.proj.ID == projectID {
			return e.proj, nil
		}
	}
	return registry.Project{}, fmt.Errorf("project %s not in %s catalog", projectID, provider)
}

// ProjectVersions returns the project's compatible versions, newest first.
// A project with no versions file has no known versions, which is not an
// error.
func (c *Catalog) ProjectVersions(ctx context.Context, provider registry.Provider, projectID, gameVersion, loader string, ct registry.ContentType) ([]registry.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []registry.Version
	switch provider {
	case registry.Modrinth:
		path := filepath.Join(c.dir, "modrinth", "versions", projectID+".json")
		raw, ok, err := c.readOptional(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		var versions []registry.ModrinthVersion
		if err := json.Unmarshal(raw, &versions); err != nil {
			return nil, fmt.Errorf("version list for %s is malformed: %w", projectID, err)
		}
		for _, v := range versions {
			if gameVersion != "" && !containsFold(v.GameVersions, gameVersion) {
				continue
			}
			// Loader compatibility only constrains mods; resource and
			// shader packs list pseudo-loaders like "iris" or "minecraft".
			if ct == registry.ContentMods && loader != "" && !containsFold(v.Loaders, loader) {
				continue
			}
			out = append(out, registry.FromModrinthVersion(v))
		}
	case registry.CurseForge:
		path := filepath.Join(c.dir, "curseforge", "files", projectID+".json")
		raw, ok, err := c.readOptional(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		var files []registry.CurseFile
		if err := json.Unmarshal(raw, &files); err != nil {
			return nil, fmt.Errorf("file list for %s is malformed: %w", projectID, err)
		}
		for _, f := range files {
			// CurseForge mixes game versions and loader names in one list.
			if gameVersion != "" && !containsFold(f.GameVersions, gameVersion) {
				continue
			}
			if ct == registry.ContentMods && loader != "" && !containsFold(f.GameVersions, loader) {
				continue
			}
			out = append(out, registry.FromCurseFile(f))
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

// readOptional reads a file that may legitimately be absent.
func (c *Catalog) readOptional(path string) ([]byte, bool, error) {
	exists, err := afero.Exists(c.fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !exists {
		return nil, false, nil
	}
	raw, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, true, nil
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
