package cmd

import (
	"context"

	"launcher-sync/feed"
	"launcher-sync/logger"
	"launcher-sync/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// popularCmd represents the popular command
var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the most downloaded content for the configured game version",
	Run: func(cmd *cobra.Command, args []string) {
		providerName, _ := cmd.Flags().GetString("provider")
		typeName, _ := cmd.Flags().GetString("type")
		pages, _ := cmd.Flags().GetInt("pages")
		runPopular(providerName, typeName, pages)
	},
}

func init() {
	rootCmd.AddCommand(popularCmd)

	popularCmd.Flags().StringP("provider", "p", "modrinth", "Registry to browse (modrinth or curseforge)")
	popularCmd.Flags().StringP("type", "t", "mods", "Content type (mods, resourcepacks, shaderpacks)")
	popularCmd.Flags().Int("pages", 1, "Number of result pages to fetch")
}

func runPopular(providerName, typeName string, pages int) {
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
	if err := session.LoadPopular(ctx); err != nil {
		logger.Log.Fatalw("Failed to load popular feed", zap.Error(err))
	}
	for page := 1; page < pages && session.State(feed.Popular).HasMore; page++ {
		if err := session.LoadMore(ctx, feed.Popular); err != nil {
			logger.Log.Fatalw("Failed to load more results", zap.Error(err))
		}
	}

	printFeed(session.State(feed.Popular), provider)
}
