package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/blocksync/internal/logging"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of blocksync.`,
		Run: func(_ *cobra.Command, _ []string) {
			logger := logging.NewWithWriter(os.Stdout, "info")

			logger.Info("blocksync",
				logging.FieldVersion, info.Version,
				logging.FieldCommit, info.Commit,
				logging.FieldBuilt, info.Date,
			)
		},
	}

	return cmd
}
