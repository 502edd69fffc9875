package reporter

import (
	"encoding/json"
	"fmt"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Revision string              `json:"revision"`
	Commands []blockdoc.Command  `json:"commands"`
	Counters blockdoc.Counters   `json:"counters"`
	Document JSONDocumentSummary `json:"document"`
}

// JSONDocumentSummary describes the document after the update.
type JSONDocumentSummary struct {
	Blocks      int `json:"blocks"`
	Lines       int `json:"lines"`
	NeedsRender int `json:"needsRender"`
}

type jsonReporter struct {
	opts Options
}

func newJSONReporter(opts Options) *jsonReporter {
	return &jsonReporter{opts: opts}
}

// Report implements Reporter.
func (r *jsonReporter) Report(result blockdoc.CommandResult, stats blockdoc.Stats) error {
	out := JSONOutput{
		Revision: result.Revision,
		Commands: result.Commands,
		Counters: result.Counters,
		Document: JSONDocumentSummary{
			Blocks:      stats.Blocks,
			Lines:       stats.Lines,
			NeedsRender: stats.NeedsRender,
		},
	}
	if out.Commands == nil {
		out.Commands = []blockdoc.Command{}
	}

	enc := json.NewEncoder(r.opts.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}
