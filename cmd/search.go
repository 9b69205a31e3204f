package cmd

import (
	"context"
	"fmt"

	"launcher-sync/feed"
	"launcher-sync/logger"
	"launcher-sync/registry"
	"launcher-sync/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a registry for content",
	Long: `Search a registry for content compatible with the configured game
version and loader. Results are sorted by relevance for a non-empty query
and by download count otherwise.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		providerName, _ := cmd.Flags().GetString("provider")
		typeName, _ := cmd.Flags().GetString("type")
		categories, _ := cmd.Flags().GetStringSlice("category")
		pages, _ := cmd.Flags().GetInt("pages")
		runSearch(query, providerName, typeName, categories, pages)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("provider", "p", "modrinth", "Registry to search (modrinth or curseforge)")
	searchCmd.Flags().StringP("type", "t", "mods", "Content type (mods, resourcepacks, shaderpacks)")
	searchCmd.Flags().StringSliceP("category", "c", nil, "Restrict results to a category (repeatable)")
	searchCmd.Flags().Int("pages", 1, "Number of result pages to fetch")
}

func runSearch(query, providerName, typeName string, categories []string, pages int) {
	cfg, _, reg, _ := bootstrap(".")

	provider, err := registry.ParseProvider(providerName)
	if err != nil {
		logger.Log.Fatalw("Invalid provider", zap.String("provider", providerName), zap.Error(err))
	}
	contentType, err := registry.ParseContentType(typeName)
	if err != nil {
		logger.Log.Fatalw("Invalid content type", zap.String("type", typeName), zap.Error(err))
	}

	session := feed.NewSession(reg, feed.Options{
		Provider:      provider,
		ContentType:   contentType,
		GameVersion:   cfg.GameVersion,
		Loader:        cfg.Loader,
		PageSize:      cfg.PageSize,
		SearchOnEmpty: cfg.SearchOnEmpty,
	}, logger.Log)

	ctx := context.Background()
	if err := session.Search(ctx, query, categories); err != nil {
		logger.Log.Fatalw("Search failed", zap.Error(err))
	}
	for page := 1; page < pages && session.State(feed.Query).HasMore; page++ {
		if err := session.LoadMore(ctx, feed.Query); err != nil {
			logger.Log.Fatalw("Failed to load more results", zap.Error(err))
		}
	}

	printFeed(session.State(feed.Query), provider)
}

// printFeed renders one feed bucket to stdout.
func printFeed(snap feed.Snapshot, provider registry.Provider) {
	if len(snap.Hits) == 0 {
		fmt.Println("No results.")
		return
	}

	fmt.Printf("%s  showing %d of %d results\n\n", ui.ProviderBadge(provider), len(snap.Hits), snap.TotalHits)
	for _, hit := range snap.Hits {
		fmt.Printf("%-32s %-20s %10d downloads\n", ui.Truncate(hit.Title, 30), ui.Truncate(hit.Author, 18), hit.Downloads)
		if hit.Description != "" {
			fmt.Println(ui.Faint("  " + ui.Truncate(hit.Description, 76)))
		}
	}
	if snap.HasMore {
		fmt.Println(ui.Faint("\nMore results available."))
	}
}
