package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"launcher-sync/registry"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	InstanceDir   string  `mapstructure:"INSTANCE_DIR"`
	InstanceName  string  `mapstructure:"INSTANCE_NAME"`
	GameVersion   string  `mapstructure:"GAME_VERSION"`
	Loader        string  `mapstructure:"LOADER"`
	CatalogDir    string  `mapstructure:"CATALOG_DIR"`
	PageSize      int     `mapstructure:"PAGE_SIZE"`
	RegistryRPS   float64 `mapstructure:"REGISTRY_RPS"`
	SearchOnEmpty bool    `mapstructure:"SEARCH_ON_EMPTY"`
	KeepHistory   bool    `mapstructure:"KEEP_HISTORY"`
	DatabasePath  string  `mapstructure:"-"` // Not from env, derived
}

// envKeys lists every environment variable the application reads.
var envKeys = []string{
	"INSTANCE_DIR",
	"INSTANCE_NAME",
	"GAME_VERSION",
	"LOADER",
	"CATALOG_DIR",
	"PAGE_SIZE",
	"REGISTRY_RPS",
	"SEARCH_ON_EMPTY",
	"KEEP_HISTORY",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vip_err := viper.ReadInConfig()
	if _, ok := vip_err.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vip_err != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vip_err)
	}

	// Bind environment variables automatically.
	// Viper will check for an environment variable matching the key name (e.g., INSTANCE_DIR)
	viper.AutomaticEnv()

	for _, key := range envKeys {
		if vip_err = viper.BindEnv(strings.ToLower(key), key); vip_err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", vip_err)
		}
	}

	// Unmarshal the config
	vip_err = viper.Unmarshal(&config)
	if vip_err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vip_err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in defaults for every value the user may omit.
func processConfigDefaults(config *Config) {
	if config.InstanceName == "" {
		config.InstanceName = "default"
	}
	if config.Loader == "" {
		config.Loader = "fabric" // Default loader
	}
	if config.PageSize <= 0 {
		config.PageSize = 20
	}
	if config.PageSize > 100 {
		config.PageSize = 100
	}

	// Viper doesn't handle numeric or bool defaults from env well without explicit
	// SetDefault, so the raw string values are inspected before trusting the
	// unmarshalled zero values.
	rpsStr := viper.GetString("REGISTRY_RPS")
	if rpsStr == "" {
		config.RegistryRPS = 4
	} else {
		rps, err := strconv.ParseFloat(rpsStr, 64)
		if err != nil {
			slog.Warn("Invalid value for REGISTRY_RPS, defaulting to 4", "value", rpsStr, "error", err)
			config.RegistryRPS = 4
		} else {
			config.RegistryRPS = rps
		}
	}

	keepStr := viper.GetString("KEEP_HISTORY")
	if keepStr == "" {
		config.KeepHistory = true
		slog.Info("KEEP_HISTORY not set, defaulting to true")
	} else {
		keep, err := strconv.ParseBool(keepStr)
		if err != nil {
			slog.Warn("Invalid value for KEEP_HISTORY, defaulting to true", "value", keepStr, "error", err)
			config.KeepHistory = true
		} else {
			config.KeepHistory = keep
		}
	}

	emptyStr := viper.GetString("SEARCH_ON_EMPTY")
	if emptyStr == "" {
		config.SearchOnEmpty = false
	} else {
		onEmpty, err := strconv.ParseBool(emptyStr)
		if err != nil {
			slog.Warn("Invalid value for SEARCH_ON_EMPTY, defaulting to false", "value", emptyStr, "error", err)
			config.SearchOnEmpty = false
		} else {
			config.SearchOnEmpty = onEmpty
		}
	}
}

// validateAndEnsureDirectories checks the required paths and creates the
// instance layout, then derives the paths that hang off the instance dir.
func validateAndEnsureDirectories(config *Config) error {
	if config.InstanceDir == "" {
		slog.Error("INSTANCE_DIR is not set")
		return fmt.Errorf("INSTANCE_DIR is required")
	}

	// Ensure InstanceDir exists, create if not
	if _, err := os.Stat(config.InstanceDir); os.IsNotExist(err) {
		slog.Info("Instance directory does not exist, creating it", "path", config.InstanceDir)
		if err := os.MkdirAll(config.InstanceDir, 0755); err != nil {
			slog.Error("Failed to create instance directory", "path", config.InstanceDir, "error", err)
			return err
		}
	} else if err != nil {
		slog.Error("Failed to check instance directory", "path", config.InstanceDir, "error", err)
		return err
	}

	// Ensure one subdirectory per content bucket
	for _, ct := range registry.ContentTypes() {
		dir := filepath.Join(config.InstanceDir, ct.Dir())
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Content directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create content directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check content directory", "path", dir, "error", err)
			return err
		}
	}

	// The catalog holds registry snapshot data supplied by the user; it is not
	// created here so a mistyped CATALOG_DIR surfaces as a load error.
	if config.CatalogDir == "" {
		config.CatalogDir = filepath.Join(config.InstanceDir, "catalog")
	}

	// Derive DatabasePath (place it in the instance dir for portability)
	config.DatabasePath = filepath.Join(config.InstanceDir, "content.db")

	return nil
}
