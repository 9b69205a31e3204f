package cmd

import (
	"context"
	"fmt"

	"launcher-sync/logger"
	"launcher-sync/ui"
	"launcher-sync/updater"

	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check installed content for available updates",
	Long: `Check every registry-linked item of the instance for a newer
compatible version. Items without registry metadata are reported as
unmatched; run 'resolve' to link them first.`,
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		runCheck(typeName)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("type", "t", "", "Restrict to one content type")
}

func runCheck(typeName string) {
	_, st, reg, instance := bootstrap(".")
	ctx := context.Background()

	items := loadItems(ctx, st, instance, typeName)
	if len(items) == 0 {
		fmt.Println("Nothing installed yet.")
		return
	}

	up := updater.New(reg, st, instance, logger.Log)
	candidates, summary := up.Check(ctx, items)

	for _, item := range items {
		if !item.Linked() {
			fmt.Printf("%-34s %s\n", ui.Truncate(item.DisplayName(), 32), ui.Faint("not linked to a registry"))
			continue
		}
		if cand, ok := candidates[item.ProjectID]; ok {
			fmt.Println(formatCandidate(item, cand))
		}
	}

	fmt.Println()
	fmt.Println(checkSummaryLine(summary, len(candidates)))
}
