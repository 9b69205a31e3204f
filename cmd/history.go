package cmd

import (
	"context"
	"fmt"

	"launcher-sync/logger"
	"launcher-sync/store"
	"launcher-sync/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show versions replaced by recent updates",
	Long: `Show which versions recent updates replaced, newest first.
Recording can be disabled with KEEP_HISTORY=false.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		runHistory(limit)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum entries to show")
}

func runHistory(limit int) {
	_, st, _, instance := bootstrap(".")

	entries, err := st.History(context.Background(), instance.UID, limit)
	if err != nil {
		logger.Log.Fatalw("Failed to read history", zap.Error(err))
	}
	if len(entries) == 0 {
		fmt.Println("No history recorded yet.")
		return
	}

	for _, entry := range entries {
		fmt.Println(formatHistoryEntry(entry))
	}
}

// formatHistoryEntry renders one replaced version as a history row.
func formatHistoryEntry(entry store.ItemHistory) string {
	version := entry.Version
	if version == "" {
		version = entry.VersionID
	}
	return fmt.Sprintf("%s  %-34s %-12s %s",
		entry.CreatedAt.Format("2006-01-02 15:04"),
		ui.Truncate(entry.Filename, 32),
		ui.Truncate(version, 10),
		ui.Faint(string(entry.ContentType)))
}
