package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/resonance/internal/app"
	"github.com/ewilliams-labs/resonance/internal/config"
)

var version = "0.1.0-dev"

// cliState carries the configuration resolved by the root command to its
// subcommands.
type cliState struct {
	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{}
	rootCmd := &cobra.Command{
		Use:   "resonance",
		Short: "Resonance - content-based music recommendations",
		Long: `resonance recommends tracks that sound alike.

It standardizes audio descriptors (energy, valence, tempo, ...) across a
catalog and ranks neighbours by cosine similarity. Catalogs come from a CSV
file, a local SQLite database, or a Spotify playlist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides $"+config.ConfigPathEnvVar+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newRecommendCmd(st),
		newFetchCmd(st),
		newImportCmd(st),
	)
	return rootCmd
}

// load resolves configuration once per invocation. The version command does
// not need it.
func (st *cliState) load(cmd *cobra.Command) error {
	if cmd.Name() == "version" || st.cfg != nil {
		return nil
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		if err := os.Setenv(config.ConfigPathEnvVar, path); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	app.InitLogging(cfg)
	st.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "resonance version %s\n", version)
			return err
		},
	}
}
