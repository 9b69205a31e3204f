package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"launcher-sync/logger"
	"launcher-sync/registry"
	"launcher-sync/store"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Record files already present in the instance directories",
	Long: `Walk the instance's content directories and create records for
files that are not tracked yet. New records carry no registry metadata;
run 'resolve' afterwards to link them.`,
	Run: func(_ *cobra.Command, _ []string) {
		runScan()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan() {
	cfg, st, _, instance := bootstrap(".")
	ctx := context.Background()

	added := 0
	for _, ct := range registry.ContentTypes() {
		added += scanBucket(ctx, afero.NewOsFs(), st, instance, filepath.Join(cfg.InstanceDir, ct.Dir()), ct)
	}

	fmt.Printf("Scan complete, %d new files recorded.\n", added)
}

// scanBucket records untracked content files of one directory and returns
// how many records it created.
func scanBucket(ctx context.Context, fsys afero.Fs, st *store.Store, instance store.Instance, dir string, ct registry.ContentType) int {
	items, err := st.Installed(ctx, instance.UID, ct)
	if err != nil {
		logger.Log.Fatalw("Failed to read installed items", zap.Error(err))
	}
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.Filename] = true
	}

	added := 0
	err = afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Only the top level holds installable files
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !contentFile(path) {
			return nil
		}

		filename := info.Name()
		if known[filename] {
			return nil
		}

		if _, err := st.InstallFile(ctx, store.InstallRequest{
			InstanceID:  instance.UID,
			ContentType: ct,
			File:        registry.File{Filename: filename},
		}); err != nil {
			logger.Log.Warnw("Failed to record file", zap.String("file", filename), zap.Error(err))
			return nil
		}

		logger.Log.Infow("Recorded untracked file", zap.String("file", filename), zap.String("bucket", string(ct)))
		fmt.Printf("Recorded %s (%s)\n", filename, ct)
		added++
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		logger.Log.Errorw("Error scanning directory", zap.String("dir", dir), zap.Error(err))
	}

	return added
}

// contentFile reports whether a path looks like installable content.
func contentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip":
		return true
	default:
		return false
	}
}
