package bundle

import (
	"context"
	"fmt"

	"launcher-sync/registry"
	"launcher-sync/store"
)

// Export builds a share code from everything registry-linked in the
// instance. Manual items carry no portable reference and are left out.
func Export(ctx context.Context, lister Lister, instance store.Instance) (string, error) {
	b := Bundle{
		Name:        instance.Name,
		GameVersion: instance.GameVersion,
		Loader:      instance.Loader,
	}

	for _, ct := range registry.ContentTypes() {
		items, err := lister.Installed(ctx, instance.UID, ct)
		if err != nil {
			return "", fmt.Errorf("failed to list installed %s: %w", ct, err)
		}
		for _, item := range items {
			if !item.Linked() {
				continue
			}
			b.add(ct, Ref{
				ProjectID: item.ProjectID,
				Provider:  item.Provider,
				VersionID: item.VersionID,
				Name:      item.DisplayName(),
			})
		}
	}

	return Encode(b)
}
