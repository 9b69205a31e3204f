package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"launcher-sync/logger"
	"launcher-sync/registry"
	"launcher-sync/resolver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Link manually added files to their registry projects",
	Long: `Match installed files without registry metadata against both
registries and persist the linkage. When items match on both registries a
single source decision applies to the whole run; declining it leaves every
record untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		files, _ := cmd.Flags().GetStringSlice("file")
		sourceName, _ := cmd.Flags().GetString("source")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		runResolve(typeName, files, sourceName, dryRun)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("type", "t", "", "Restrict to one content type")
	resolveCmd.Flags().StringSliceP("file", "f", nil, "Restrict to specific filenames (repeatable)")
	resolveCmd.Flags().StringP("source", "s", "", "Preferred registry when items match on both (modrinth or curseforge)")
	resolveCmd.Flags().Bool("dry-run", false, "Report what would be linked without writing")
}

func runResolve(typeName string, files []string, sourceName string, dryRun bool) {
	_, st, reg, instance := bootstrap(".")
	ctx := context.Background()

	items := loadItems(ctx, st, instance, typeName)
	res := resolver.New(reg, st, instance, logger.Log)

	if dryRun {
		report := res.DryRun(ctx, items, files)
		fmt.Printf("Scanned %d items, matched %d (%d on both registries). Nothing written.\n",
			report.Scanned, report.Matched, report.BothSources)
		return
	}

	declined := false
	var choose resolver.SourceChooser
	if sourceName != "" {
		preferred, err := registry.ParseProvider(sourceName)
		if err != nil {
			logger.Log.Fatalw("Invalid source", zap.String("source", sourceName), zap.Error(err))
		}
		choose = func(int) (registry.Provider, bool) { return preferred, true }
	} else {
		choose = func(ambiguous int) (registry.Provider, bool) {
			provider, ok := promptSource(ambiguous)
			declined = !ok
			return provider, ok
		}
	}

	report := res.Resolve(ctx, items, files, choose)
	if declined {
		fmt.Printf("Scanned %d items, matched %d. No source chosen, nothing written.\n",
			report.Scanned, report.Matched)
		return
	}
	fmt.Printf("Scanned %d items, matched %d, linked %d.\n", report.Scanned, report.Matched, report.Updated)
}

// promptSource asks which registry wins for items that matched on both.
func promptSource(ambiguous int) (registry.Provider, bool) {
	fmt.Printf("%d items matched on both registries. Prefer which source? [modrinth/curseforge/skip] ", ambiguous)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" || answer == "skip" {
		return "", false
	}

	provider, err := registry.ParseProvider(answer)
	if err != nil {
		fmt.Println("Unrecognized source, skipping.")
		return "", false
	}
	return provider, true
}
