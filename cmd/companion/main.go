package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"companion/internal/assistant"
	"companion/internal/catalog"
	"companion/internal/core"
)

var (
	// Global flags
	verbose bool
	envFile string

	// Set up by PersistentPreRunE
	cfg       *core.Config
	registry  *assistant.Registry
	logger    *slog.Logger
	logCloser io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Game creation companion with persona-driven assistants",
	Long: `companion answers game-development questions through one of four
assistant personalities (creative, technical, marketing, educator) and serves a
catalog of starter game templates.

Answers come from a remote language model when credentials are configured and
from built-in guidance otherwise.

Run without arguments to start an interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		var err error
		cfg, err = core.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		registry = assistant.NewRegistry()
		if err := cfg.CheckPersonality(registry); err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, logCloser = core.NewLogger(cfg.LogLevel, cfg.LogFile)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadCatalog returns the configured catalog, or the built-in one.
func loadCatalog() (*catalog.Catalog, error) {
	if cfg.CatalogFile != "" {
		return catalog.LoadFile(cfg.CatalogFile)
	}
	return catalog.Default()
}
