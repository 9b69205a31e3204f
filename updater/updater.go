// Package updater detects newer versions for registry-linked items and
// applies them as a sequential batch. Items are processed one at a time to
// keep registry load bounded; one item's failure never aborts the rest of
// the batch.
package updater

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"launcher-sync/gateway"
	"launcher-sync/registry"
	"launcher-sync/store"
)

// Instance is the slice of the local store the updater mutates.
type Instance interface {
	InstallFile(ctx context.Context, req store.InstallRequest) (string, error)
	DeleteFile(ctx context.Context, instanceID string, ct registry.ContentType, filename string) error
}

// Candidate is an available update for one linked project.
type Candidate struct {
	ProjectID string
	Provider  registry.Provider
	Latest    registry.Version
}

// CheckSummary reports how an update check went. Failed counts items whose
// registry lookup errored; Manual counts items skipped for having no
// registry linkage.
type CheckSummary struct {
	Checked int
	Failed  int
	Manual  int
}

// Result reports the outcome of a bulk apply. Failed lists the display
// names of items whose update did not complete.
type Result struct {
	Applied int
	Skipped int
	Failed  []string
}

// Event reports the outcome of one item during a bulk apply.
type Event struct {
	Name    string
	Index   int // 1-based position in the apply queue
	Total   int
	Skipped bool
	Err     error
}

// ProgressFunc receives one Event per processed item.
type ProgressFunc func(Event)

// Updater checks and applies updates for one instance.
type Updater struct {
	reg      gateway.Registry
	inst     Instance
	instance store.Instance
	log      *zap.SugaredLogger
}

// New builds an Updater operating on the given instance.
func New(reg gateway.Registry, inst Instance, instance store.Instance, logger *zap.SugaredLogger) *Updater {
	return &Updater{reg: reg, inst: inst, instance: instance, log: logger}
}

// normalizeLabel prepares a version label for comparison across registries
// that disagree about "v" prefixes and casing.
func normalizeLabel(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v")
}

// updateAvailable reports whether latest is a different release than the
// one the item records. Version IDs are authoritative; when either side
// lacks one the normalized display labels decide.
func updateAvailable(item store.Item, latest registry.Version) bool {
	if item.VersionID != "" && latest.ID != "" {
		return item.VersionID != latest.ID
	}
	return normalizeLabel(item.Version) != normalizeLabel(latest.Label)
}

// Check queries each linked item's registry for its latest compatible
// version and returns a candidate map keyed by project ID. Items are
// checked independently; a lookup failure is counted, logged and skipped.
func (u *Updater) Check(ctx context.Context, items []store.Item) (map[string]Candidate, CheckSummary) {
	candidates := make(map[string]Candidate)
	var sum CheckSummary

	for _, item := range items {
		if !item.Linked() {
			sum.Manual++
			continue
		}
		versions, err := u.reg.ProjectVersions(ctx, item.Provider, item.ProjectID,
			u.instance.GameVersion, u.instance.Loader, item.ContentType)
		if err != nil {
			sum.Failed++
			u.log.Warnw("Update check failed",
				zap.String("item", item.DisplayName()), zap.Error(err))
			continue
		}
		sum.Checked++
		if len(versions) == 0 {
			continue
		}
		latest := versions[0]
		if updateAvailable(item, latest) {
			candidates[item.ProjectID] = Candidate{
				ProjectID: item.ProjectID,
				Provider:  item.Provider,
				Latest:    latest,
			}
		}
	}
	return candidates, sum
}

type task struct {
	item store.Item
	cand Candidate
}

// Apply installs every candidate found for the given items, strictly in
// item order. An item already at the candidate version is skipped without
// touching any file, so retrying a partially failed batch is safe. The
// batch always runs to completion; failures are reported in the Result.
func (u *Updater) Apply(ctx context.Context, candidates map[string]Candidate, items []store.Item, progress ProgressFunc) Result {
	var queue []task
	for _, item := range items {
		if !item.Linked() {
			continue
		}
		cand, ok := candidates[item.ProjectID]
		if !ok {
			continue
		}
		queue = append(queue, task{item: item, cand: cand})
	}

	var res Result
	for i, tk := range queue {
		ev := Event{Name: tk.item.DisplayName(), Index: i + 1, Total: len(queue)}

		if !updateAvailable(tk.item, tk.cand.Latest) {
			res.Skipped++
			ev.Skipped = true
			emit(progress, ev)
			continue
		}

		if err := u.applyOne(ctx, tk.item, tk.cand); err != nil {
			res.Failed = append(res.Failed, tk.item.DisplayName())
			ev.Err = err
			u.log.Warnw("Update failed",
				zap.String("item", tk.item.DisplayName()), zap.Error(err))
			emit(progress, ev)
			continue
		}

		res.Applied++
		u.log.Infow("Updated item",
			zap.String("item", tk.item.DisplayName()),
			zap.String("version", tk.cand.Latest.Label))
		emit(progress, ev)
	}
	return res
}

// applyOne installs the candidate's latest file and removes the old one.
// The old file is deleted only when its name differs from the new one; a
// same-name install already overwrote it in place.
func (u *Updater) applyOne(ctx context.Context, item store.Item, cand Candidate) error {
	project, err := u.reg.Project(ctx, cand.Provider, cand.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to fetch project metadata: %w", err)
	}

	file := registry.PrimaryFile(cand.Latest)
	if file == nil {
		return fmt.Errorf("version %s has no installable file", cand.Latest.Label)
	}

	installed, err := u.inst.InstallFile(ctx, store.InstallRequest{
		InstanceID:  u.instance.UID,
		Provider:    cand.Provider,
		ProjectID:   cand.ProjectID,
		VersionID:   cand.Latest.ID,
		File:        *file,
		ContentType: item.ContentType,
		Name:        project.Title,
		Author:      project.Author,
		Version:     cand.Latest.Label,
		Categories:  project.Categories,
	})
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", file.Filename, err)
	}

	if item.Filename != "" && item.Filename != installed {
		if err := u.inst.DeleteFile(ctx, u.instance.UID, item.ContentType, item.Filename); err != nil {
			u.log.Warnw("Failed to remove replaced file",
				zap.String("filename", item.Filename), zap.Error(err))
		}
	}
	return nil
}

func emit(progress ProgressFunc, ev Event) {
	if progress != nil {
		progress(ev)
	}
}
