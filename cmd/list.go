package cmd

import (
	"context"
	"fmt"

	"launcher-sync/logger"
	"launcher-sync/registry"
	"launcher-sync/store"
	"launcher-sync/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the instance's installed content",
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		runList(typeName)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("type", "t", "", "Restrict to one content type")
}

func runList(typeName string) {
	cfg, st, _, instance := bootstrap(".")
	ctx := context.Background()

	contentTypes := registry.ContentTypes()
	if typeName != "" {
		ct, err := registry.ParseContentType(typeName)
		if err != nil {
			logger.Log.Fatalw("Invalid content type", zap.String("type", typeName), zap.Error(err))
		}
		contentTypes = []registry.ContentType{ct}
	}

	fmt.Printf("%s (%s / %s)\n", ui.Title(cfg.InstanceName), cfg.GameVersion, cfg.Loader)

	total, linked := 0, 0
	for _, ct := range contentTypes {
		items, err := st.Installed(ctx, instance.UID, ct)
		if err != nil {
			logger.Log.Fatalw("Failed to read installed items", zap.Error(err))
		}
		if len(items) == 0 {
			continue
		}

		fmt.Println()
		fmt.Println(ui.Title(headingFor(ct)))
		for _, item := range items {
			fmt.Println("  " + formatItem(item))
		}
		total += len(items)
		linked += countLinked(items)
	}

	if total == 0 {
		fmt.Println("\nNothing installed yet.")
		return
	}
	fmt.Printf("\n%d items, %d linked to a registry.\n", total, linked)
}

// headingFor maps a content type to its list heading.
func headingFor(ct registry.ContentType) string {
	switch ct {
	case registry.ContentMods:
		return "Mods"
	case registry.ContentResourcePacks:
		return "Resource packs"
	case registry.ContentShaderPacks:
		return "Shader packs"
	default:
		return string(ct)
	}
}

// countLinked reports how many of the given items carry registry metadata.
func countLinked(items []store.Item) int {
	n := 0
	for _, item := range items {
		if item.Linked() {
			n++
		}
	}
	return n
}
