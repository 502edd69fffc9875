package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/blocksync/internal/logging"
	"github.com/yaklabco/blocksync/pkg/blockdoc"
	"github.com/yaklabco/blocksync/pkg/fsutil"
	"github.com/yaklabco/blocksync/pkg/reporter"
	gmsplitter "github.com/yaklabco/blocksync/pkg/splitter/goldmark"
)

type snapshotFlags struct {
	output string
	from   string
	flavor string
	format string
	quiet  bool
}

func newSnapshotCommand() *cobra.Command {
	flags := &snapshotFlags{}

	cmd := &cobra.Command{
		Use:   "snapshot FILE",
		Short: "Write a snapshot of a document's block state",
		Long: `Split FILE into blocks and write the resulting snapshot as JSON.

With --from, a previous snapshot is restored first and the file is applied
as an update against it: block identities survive across runs, and the
printed command list shows what changed since the previous snapshot.

Examples:
  blocksync snapshot README.md                     # Write README.md.blocksync.json
  blocksync snapshot README.md -o state.json       # Explicit output path
  blocksync snapshot README.md --from state.json -o state.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output path (default: FILE.blocksync.json)")
	cmd.Flags().StringVar(&flags.from, "from", "", "previous snapshot to update against")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format for the command list: text, json")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "write the snapshot without printing commands")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string, flags *snapshotFlags) error {
	logger := logging.Default()

	cfg, colorMode, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flavor := cfg.Flavor
	if flags.flavor != "" {
		flavor = flags.flavor
	}
	outputPath := flags.output
	if outputPath == "" {
		outputPath = args[0] + ".blocksync.json"
	}

	doc := blockdoc.New(gmsplitter.New(flavor))
	if flags.from != "" {
		prev, err := os.ReadFile(flags.from)
		if err != nil {
			return fmt.Errorf("read snapshot %s: %w", flags.from, err)
		}
		if err := doc.Restore(prev); err != nil {
			return fmt.Errorf("restore snapshot %s: %w", flags.from, err)
		}
		logger.Debug("snapshot restored",
			logging.FieldPath, flags.from,
			logging.FieldBlocks, doc.BlockCount(),
			logging.FieldRevision, doc.Revision(),
		)
	}

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	result := doc.Update(string(text))

	data, err := doc.Export()
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fsutil.WriteAtomic(ctx, outputPath, data, 0); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("snapshot written",
		logging.FieldPath, outputPath,
		logging.FieldBlocks, doc.BlockCount(),
		logging.FieldRevision, result.Revision,
	)

	if flags.quiet {
		return nil
	}
	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      flags.format,
		Color:       colorMode,
		ShowSummary: true,
	})
	if err != nil {
		return err
	}
	if err := rep.Report(result, doc.Stats()); err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	return nil
}
