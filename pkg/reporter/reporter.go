// Package reporter formats update results for human and machine consumers.
package reporter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

// Format identifies an output format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Reporter writes a formatted update result.
type Reporter interface {
	// Report writes formatted output for the given update result and
	// document stats.
	Report(result blockdoc.CommandResult, stats blockdoc.Stats) error
}

// Options controls reporter behavior.
type Options struct {
	// Writer receives the output; defaults to stdout.
	Writer io.Writer

	// Format selects "text" or "json".
	Format string

	// Color is the color mode for text output: auto, always, never.
	Color string

	// ShowSummary appends the one-line counter summary to text output.
	ShowSummary bool
}

// New creates a Reporter for the specified options.
//
//nolint:ireturn // factory intentionally returns the interface
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	switch opts.Format {
	case FormatJSON:
		return newJSONReporter(opts), nil
	case FormatText, "":
		return newTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown format %q: %w", opts.Format, errUnknownFormat)
	}
}

var errUnknownFormat = errors.New("supported formats are text and json")
