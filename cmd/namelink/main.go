package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namelink/internal/config"
	"github.com/namelink/internal/debug"
)

var (
	settingsPath string
	envPath      string
	verbose      bool

	// Loaded by the root command before any subcommand runs
	settings *config.Settings
	logger   *zap.SugaredLogger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "namelink",
		Short: "Person record linkage across two name-keyed sources",
		Long: `namelink links query person records (name, locality, milestone date) to
reference identities (name, city, birth year) using a prefix-indexed blocked
fuzzy name search and a four-feature score.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVarP(&settingsPath, "config", "c", "namelink.yaml", "settings file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", ".env file (default: nearest .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Add subcommands
	rootCmd.AddCommand(createResolveCmd())
	rootCmd.AddCommand(createLookupCmd())
	rootCmd.AddCommand(createWordsCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createRunsCmd())
	rootCmd.AddCommand(createPingCmd())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if envPath != "" {
		err = config.LoadEnvFile(envPath)
	} else {
		err = config.LoadEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	settings, err = config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if verbose {
		settings.Debug = true
	}

	zl, err := debug.NewLogger(settings.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	debug.SetLogger(zl)
	logger = debug.Logger()
	return nil
}
