package cmd

import (
	"context"
	"fmt"

	"launcher-sync/bundle"
	"launcher-sync/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the instance's linked content as a share code",
	Long: `Build a share code from every registry-linked item of the instance.
Manually added files without registry metadata are not part of the code;
run 'resolve' first to include them.`,
	Run: func(_ *cobra.Command, _ []string) {
		runExport()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport() {
	_, st, _, instance := bootstrap(".")

	code, err := bundle.Export(context.Background(), st, instance)
	if err != nil {
		logger.Log.Fatalw("Failed to build share code", zap.Error(err))
	}

	fmt.Println(code)
}
