package cmd

import (
	"context"
	"fmt"
	"strings"

	"launcher-sync/logger"
	"launcher-sync/ui"
	"launcher-sync/updater"

	"github.com/spf13/cobra"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply available updates to the instance",
	Long: `Check every registry-linked item for a newer compatible version and
install the updates one at a time. A failing item is reported and skipped;
the rest of the batch still runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		noTUI, _ := cmd.Flags().GetBool("no-tui")
		runApply(typeName, noTUI)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringP("type", "t", "", "Restrict to one content type")
	applyCmd.Flags().Bool("no-tui", false, "Plain output instead of the interactive progress view")
}

func runApply(typeName string, noTUI bool) {
	_, st, reg, instance := bootstrap(".")
	ctx := context.Background()

	items := loadItems(ctx, st, instance, typeName)
	if len(items) == 0 {
		fmt.Println("Nothing installed yet.")
		return
	}

	up := updater.New(reg, st, instance, logger.Log)
	candidates, summary := up.Check(ctx, items)
	if len(candidates) == 0 {
		fmt.Println(checkSummaryLine(summary, 0))
		return
	}

	if noTUI {
		result := up.Apply(ctx, candidates, items, func(ev updater.Event) {
			switch {
			case ev.Err != nil:
				fmt.Printf("[%d/%d] %s %s\n", ev.Index, ev.Total, ev.Name, ui.Err("failed: "+ev.Err.Error()))
			case ev.Skipped:
				fmt.Printf("[%d/%d] %s %s\n", ev.Index, ev.Total, ev.Name, ui.Faint("already up to date"))
			default:
				fmt.Printf("[%d/%d] %s %s\n", ev.Index, ev.Total, ev.Name, ui.Ok("updated"))
			}
		})
		fmt.Println()
		fmt.Println(applySummary(result))
		return
	}

	runProgress("Applying updates...", func(emit func(progressMsg)) {
		result := up.Apply(ctx, candidates, items, func(ev updater.Event) {
			msg := progressMsg{
				Status:  fmt.Sprintf("Updating %s", ev.Name),
				Percent: (100 * ev.Index) / ev.Total,
			}
			switch {
			case ev.Err != nil:
				msg.Err = fmt.Sprintf("%s: %v", ev.Name, ev.Err)
			case ev.Skipped:
				msg.Detail = fmt.Sprintf("%s already up to date", ev.Name)
			default:
				msg.Detail = fmt.Sprintf("Updated %s", ev.Name)
			}
			emit(msg)
		})
		emit(progressMsg{Summary: applySummary(result), Percent: 100})
	})
}

// applySummary renders the closing line of an apply run.
func applySummary(result updater.Result) string {
	line := fmt.Sprintf("Applied %d updates, skipped %d.", result.Applied, result.Skipped)
	if len(result.Failed) > 0 {
		line += fmt.Sprintf(" Failed: %s.", strings.Join(result.Failed, ", "))
	}
	return line
}
