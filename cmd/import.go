package cmd

import (
	"context"
	"fmt"
	"strings"

	"launcher-sync/bundle"
	"launcher-sync/logger"
	"launcher-sync/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [code]",
	Short: "Install content from a share code",
	Long: `Decode a share code and install its references into the instance,
resolving each against this instance's game version and loader. References
already installed are kept as they are; a failing reference is reported and
skipped.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		noTUI, _ := cmd.Flags().GetBool("no-tui")
		runImport(args[0], typeName, noTUI)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("type", "t", "mods", "Content type to import (mods, resourcepacks, shaderpacks)")
	importCmd.Flags().Bool("no-tui", false, "Plain output instead of the interactive progress view")
}

func runImport(code, typeName string, noTUI bool) {
	_, st, reg, instance := bootstrap(".")
	ctx := context.Background()

	contentType, err := registry.ParseContentType(typeName)
	if err != nil {
		logger.Log.Fatalw("Invalid content type", zap.String("type", typeName), zap.Error(err))
	}

	importer := bundle.NewImporter(reg, st, instance, logger.Log)

	if noTUI {
		result, err := importer.Import(ctx, code, contentType, func(p bundle.Progress) {
			fmt.Printf("[%3d%%] %s\n", p.Percent, p.Status)
		})
		if err != nil {
			logger.Log.Fatalw("Import failed", zap.Error(err))
		}
		fmt.Println(importSummary(result))
		return
	}

	runProgress("Decoding share code...", func(emit func(progressMsg)) {
		result, err := importer.Import(ctx, code, contentType, func(p bundle.Progress) {
			emit(progressMsg{Status: p.Status, Percent: p.Percent})
		})
		if err != nil {
			emit(progressMsg{Err: err.Error(), Summary: "Import failed."})
			return
		}
		for _, name := range result.Failed {
			emit(progressMsg{Err: name})
		}
		emit(progressMsg{Summary: importSummary(result), Percent: 100})
	})
}

// importSummary renders the closing line of an import run.
func importSummary(result bundle.Result) string {
	line := fmt.Sprintf("%d items present after import.", result.Installed)
	if len(result.Failed) > 0 {
		line += fmt.Sprintf(" Failed: %s.", strings.Join(result.Failed, ", "))
	}
	return line
}
