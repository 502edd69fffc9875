// Package cli provides the Cobra command structure for blocksync.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/blocksync/internal/logging"
	"github.com/yaklabco/blocksync/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root blocksync command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "blocksync",
		Short: "An incremental block-level Markdown sync engine",
		Long: `blocksync keeps rendered documents in sync with their Markdown source.

It splits a document into top-level blocks, matches revisions by content
hash, and emits a minimal ordered command list (append, insertBefore,
remove, replace, updateAttrs) that a renderer applies in place. Blocks
whose content is unchanged keep their identity and cached render output,
so edits touch only the blocks that actually changed.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSnapshotCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// loadConfig resolves the effective configuration and color mode from the
// root command's persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		configPath = ""
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	// --debug wins over the configured level.
	if debug, flagErr := cmd.Flags().GetBool("debug"); flagErr != nil || !debug {
		logging.SetLevel(cfg.LogLevel)
	}
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	return cfg, colorMode, nil
}
