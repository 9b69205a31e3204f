package bundle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"launcher-sync/gateway"
	"launcher-sync/registry"
	"launcher-sync/store"
)

// Progress is one step of an import, sent after the decode phase and after
// every processed item. Percent runs 0..100; the first 10 points cover
// decoding and prefetching, the rest are spread evenly over the items.
type Progress struct {
	Status  string
	Percent int
}

// ProgressFunc receives Progress events during an import.
type ProgressFunc func(Progress)

// Lister reads the installed records of an instance.
type Lister interface {
	Installed(ctx context.Context, instanceID string, ct registry.ContentType) ([]store.Item, error)
}

// Instance is the slice of the local store an import writes to.
type Instance interface {
	Lister
	InstallFile(ctx context.Context, req store.InstallRequest) (string, error)
}

// Result reports an import outcome. Installed counts references that ended
// up present, whether this run installed them or they already were.
type Result struct {
	Installed int
	Failed    []string
}

// Importer reproduces a bundle's references on one instance.
type Importer struct {
	reg      gateway.Registry
	inst     Instance
	instance store.Instance
	log      *zap.SugaredLogger
}

// NewImporter builds an Importer targeting the given instance.
func NewImporter(reg gateway.Registry, inst Instance, instance store.Instance, logger *zap.SugaredLogger) *Importer {
	return &Importer{reg: reg, inst: inst, instance: instance, log: logger}
}

func emit(progress ProgressFunc, p Progress) {
	if progress != nil {
		progress(p)
	}
}

// itemPercent scales item completion into the 10..100 band.
func itemPercent(index, total int) int {
	return 10 + (90*index)/total
}

// Import decodes a share code and installs the referenced items of one
// content bucket, strictly one at a time. References already installed are
// skipped without a registry call, and a project never installs twice in
// one run even when referenced twice. Per-item failures are isolated; only
// an undecodable code fails the whole import.
func (im *Importer) Import(ctx context.Context, code string, ct registry.ContentType, progress ProgressFunc) (Result, error) {
	emit(progress, Progress{Status: "Decoding share code"})

	b, err := Decode(code)
	if err != nil {
		return Result{}, err
	}

	refs := b.ItemsFor(ct)
	if len(refs) == 0 {
		im.log.Infow("Bundle has no items for bucket", zap.String("contentType", string(ct)))
		emit(progress, Progress{Status: "Nothing to import", Percent: 100})
		return Result{}, nil
	}

	installed, err := im.inst.Installed(ctx, im.instance.UID, ct)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list installed %s: %w", ct, err)
	}
	have := make(map[string]bool, len(installed))
	for _, item := range installed {
		if item.ProjectID != "" {
			have[item.ProjectID] = true
		}
	}

	emit(progress, Progress{
		Status:  fmt.Sprintf("Importing %d %s from %q", len(refs), ct, b.Name),
		Percent: 10,
	})

	var res Result
	for i, ref := range refs {
		name := ref.Name
		if name == "" {
			name = ref.ProjectID
		}

		switch {
		case have[ref.ProjectID]:
			res.Installed++
			im.log.Debugw("Reference already installed", zap.String("project", ref.ProjectID))
		default:
			if err := im.importOne(ctx, ref, ct, b); err != nil {
				res.Failed = append(res.Failed, name)
				im.log.Warnw("Failed to import reference",
					zap.String("item", name), zap.Error(err))
				break
			}
			have[ref.ProjectID] = true
			res.Installed++
		}

		emit(progress, Progress{
			Status:  fmt.Sprintf("Processed %s (%d/%d)", name, i+1, len(refs)),
			Percent: itemPercent(i+1, len(refs)),
		})
	}
	return res, nil
}

// importOne resolves a reference to a concrete version and installs its
// primary file. A pinned version missing from the compatible list falls
// back to the latest one rather than failing the reference.
func (im *Importer) importOne(ctx context.Context, ref Ref, ct registry.ContentType, b Bundle) error {
	if ref.ProjectID == "" {
		return errors.New("reference has no project id")
	}
	if !ref.Provider.Known() {
		return fmt.Errorf("reference has unknown provider %q", ref.Provider)
	}

	versions, err := im.reg.ProjectVersions(ctx, ref.Provider, ref.ProjectID,
		im.instance.GameVersion, im.instance.Loader, ct)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	if len(versions) == 0 {
		return fmt.Errorf("no compatible version for %s/%s", im.instance.GameVersion, im.instance.Loader)
	}

	chosen := versions[0]
	if ref.VersionID != "" {
		found := false
		for _, v := range versions {
			if v.ID == ref.VersionID {
				chosen = v
				found = true
				break
			}
		}
		if !found {
			im.log.Warnw("Pinned version not compatible, using latest",
				zap.String("project", ref.ProjectID),
				zap.String("pinned", ref.VersionID),
				zap.String("latest", chosen.Label))
		}
	}

	file := registry.PrimaryFile(chosen)
	if file == nil {
		return fmt.Errorf("version %s has no installable file", chosen.Label)
	}

	name := ref.Name
	author := ""
	var cats []string
	if project, err := im.reg.Project(ctx, ref.Provider, ref.ProjectID); err == nil {
		if project.Title != "" {
			name = project.Title
		}
		author = project.Author
		cats = project.Categories
	} else {
		im.log.Warnw("Failed to fetch project metadata, installing with bundle name",
			zap.String("project", ref.ProjectID), zap.Error(err))
	}

	_, err = im.inst.InstallFile(ctx, store.InstallRequest{
		InstanceID:  im.instance.UID,
		Provider:    ref.Provider,
		ProjectID:   ref.ProjectID,
		VersionID:   chosen.ID,
		File:        *file,
		ContentType: ct,
		Name:        name,
		Author:      author,
		Version:     chosen.Label,
		Categories:  cats,
	})
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", file.Filename, err)
	}
	return nil
}
