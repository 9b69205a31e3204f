package cmd

import (
	"context"
	"fmt"

	"launcher-sync/config"
	"launcher-sync/gateway"
	"launcher-sync/logger"
	"launcher-sync/registry"
	"launcher-sync/snapshot"
	"launcher-sync/store"
	"launcher-sync/ui"
	"launcher-sync/updater"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string) (config.Config, *store.Store, gateway.Registry, store.Instance) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	if cfg.GameVersion == "" {
		logger.Log.Fatal("Error: GAME_VERSION must be set.")
	}

	st, err := store.Open(cfg.DatabasePath, logger.Log)
	if err != nil {
		logger.Log.Fatalw("Failed to open database", zap.Error(err))
	}
	st.KeepHistory = cfg.KeepHistory
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	catalog := snapshot.NewOS(cfg.CatalogDir, logger.Log)
	reg := gateway.NewLimited(catalog, cfg.RegistryRPS)

	instance, err := st.EnsureInstance(context.Background(), cfg.InstanceName, cfg.GameVersion, cfg.Loader)
	if err != nil {
		logger.Log.Fatalw("Failed to prepare instance record", zap.Error(err))
	}

	return cfg, st, reg, instance
}

// loadItems fetches the instance's installed records, optionally restricted
// to one content type. An empty typeName means every bucket.
func loadItems(ctx context.Context, st *store.Store, instance store.Instance, typeName string) []store.Item {
	if typeName == "" {
		items, err := st.InstalledAll(ctx, instance.UID)
		if err != nil {
			logger.Log.Fatalw("Failed to read installed items", zap.Error(err))
		}
		return items
	}

	ct, err := registry.ParseContentType(typeName)
	if err != nil {
		logger.Log.Fatalw("Invalid content type", zap.String("type", typeName), zap.Error(err))
	}
	items, err := st.Installed(ctx, instance.UID, ct)
	if err != nil {
		logger.Log.Fatalw("Failed to read installed items", zap.Error(err))
	}
	return items
}

// formatItem renders one installed record as a list row.
func formatItem(item store.Item) string {
	version := item.Version
	if version == "" {
		version = "-"
	}
	row := fmt.Sprintf("%-34s %-12s %s", ui.Truncate(item.DisplayName(), 32), ui.Truncate(version, 10), ui.ProviderBadge(item.Provider))
	if !item.Enabled {
		row += " " + ui.Faint("(disabled)")
	}
	return row
}

// formatCandidate renders one available update as a check row.
func formatCandidate(item store.Item, cand updater.Candidate) string {
	current := item.Version
	if current == "" {
		current = item.VersionID
	}
	if current == "" {
		current = "?"
	}
	latest := cand.Latest.Label
	if latest == "" {
		latest = cand.Latest.ID
	}
	return fmt.Sprintf("%-34s %s -> %s", ui.Truncate(item.DisplayName(), 32), current, ui.Ok(latest))
}

// checkSummaryLine renders the closing line of a check run.
func checkSummaryLine(summary updater.CheckSummary, updates int) string {
	return fmt.Sprintf("Checked %d items: %d updates available, %d unmatched, %d lookups failed.",
		summary.Checked+summary.Failed+summary.Manual, updates, summary.Manual, summary.Failed)
}
