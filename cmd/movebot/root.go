package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"movebot/internal/catalog"
	"movebot/internal/config"
	"movebot/internal/i18n"
	"movebot/internal/store"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "movebot.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "movebot",
	Short:         "Telegram bot that posts random exercise breaks and keeps score",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
}

func Execute() error {
	return rootCmd.Execute()
}

// resolvedConfigPath returns the config file to read. A missing default file means
// defaults plus environment.
func resolvedConfigPath(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("config") {
		return configPath, nil
	}
	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return configPath, nil
}

// loadLocalConfig loads the config for commands that do not talk to Telegram.
func loadLocalConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := resolvedConfigPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadLocal(path)
	if err != nil {
		return nil, err
	}
	if err := loadLocales(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadLocales(cfg *config.Config) error {
	if cfg.LocalesDir == "" {
		return nil
	}
	if err := i18n.Load(cfg.LocalesDir); err != nil {
		return fmt.Errorf("failed to load locales: %w", err)
	}
	return nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}
