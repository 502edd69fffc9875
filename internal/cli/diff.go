package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/blocksync/internal/logging"
	"github.com/yaklabco/blocksync/pkg/blockdoc"
	"github.com/yaklabco/blocksync/pkg/reporter"
	gmsplitter "github.com/yaklabco/blocksync/pkg/splitter/goldmark"
)

// ErrChangesFound is returned by diff --exit-code when the revisions differ.
// It carries no message for the user; main maps it to the exit code.
var ErrChangesFound = errors.New("changes found")

type diffFlags struct {
	format    string
	flavor    string
	exitCode  bool
	noSummary bool
}

func newDiffCommand() *cobra.Command {
	flags := &diffFlags{}

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Diff two Markdown files as block commands",
		Long: `Diff two revisions of a Markdown document and print the command list
that transforms the rendered form of OLD into the rendered form of NEW.

Examples:
  blocksync diff old.md new.md              # Styled command list
  blocksync diff old.md new.md --format json  # Machine-readable output
  blocksync diff old.md new.md --exit-code  # Exit 1 when revisions differ`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")
	cmd.Flags().BoolVar(&flags.exitCode, "exit-code", false, "exit with 1 when the revisions differ")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "hide the counter summary line")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string, flags *diffFlags) error {
	logger := logging.Default()

	cfg, colorMode, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flavor := cfg.Flavor
	if flags.flavor != "" {
		flavor = flags.flavor
	}

	oldText, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	newText, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	doc := blockdoc.New(gmsplitter.New(flavor))
	first := doc.Update(string(oldText))
	result := doc.Update(string(newText))

	logger.Debug("diff computed",
		logging.FieldInput, args[0],
		logging.FieldOutput, args[1],
		logging.FieldBlocks, first.Counters.Inserted,
		logging.FieldCommands, len(result.Commands),
	)

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      flags.format,
		Color:       colorMode,
		ShowSummary: !flags.noSummary,
	})
	if err != nil {
		return err
	}
	if err := rep.Report(result, doc.Stats()); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if flags.exitCode && len(result.Commands) > 0 {
		return ErrChangesFound
	}
	return nil
}
