package reporter

import (
	"bufio"
	"fmt"

	"github.com/yaklabco/blocksync/internal/ui/pretty"
	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

const bufWriterSize = 64 * 1024

// textReporter formats results as styled terminal output.
type textReporter struct {
	opts   Options
	styles *pretty.Styles
}

func newTextReporter(opts Options) *textReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &textReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
	}
}

// Report implements Reporter.
func (r *textReporter) Report(result blockdoc.CommandResult, stats blockdoc.Stats) (err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	fmt.Fprint(bw, r.styles.FormatCommands(result.Commands))

	if r.opts.ShowSummary {
		fmt.Fprint(bw, r.styles.FormatCountersOneLine(result.Counters))
		fmt.Fprint(bw, r.styles.Dim.Render(
			fmt.Sprintf("%d blocks, %d lines, %d awaiting render, revision %s",
				stats.Blocks, stats.Lines, stats.NeedsRender, result.Revision)))
		fmt.Fprintln(bw)
	}

	return nil
}
