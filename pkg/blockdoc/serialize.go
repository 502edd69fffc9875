package blockdoc

import (
	"encoding/json"
	"fmt"
)

// snapshotJSON is the durable wire shape of a snapshot. Payloads are
// non-durable by contract: they are dropped on export and recomputed on
// demand after a restore.
type snapshotJSON struct {
	Revision   string      `json:"revision"`
	RawContent string      `json:"rawContent"`
	IDCounter  int64       `json:"idCounter"`
	Blocks     []blockJSON `json:"blocks"`
}

type blockJSON struct {
	ID        BlockID `json:"id"`
	Hash      string  `json:"hash"`
	StartLine int     `json:"startLine"`
	LineCount int     `json:"lineCount"`
	Content   string  `json:"content"`
	Kind      string  `json:"kind"`
	Language  string  `json:"language,omitempty"`
}

// Export serializes the current snapshot without payloads.
// Exporting before the first update yields an empty snapshot.
func (d *Document) Export() ([]byte, error) {
	out := snapshotJSON{Blocks: []blockJSON{}}
	if d.snap != nil {
		out.Revision = d.snap.revision
		out.RawContent = d.snap.rawContent
		out.IDCounter = d.snap.idCounter
		for _, b := range d.snap.blocks {
			out.Blocks = append(out.Blocks, blockJSON{
				ID:        b.ID,
				Hash:      b.Hash,
				StartLine: b.StartLine,
				LineCount: b.LineCount,
				Content:   b.Content,
				Kind:      b.Kind.String(),
				Language:  b.Language,
			})
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return data, nil
}

// Restore installs a snapshot previously produced by Export, replacing the
// current one. Cached payloads are not restored; every block re-enters the
// render-needed queue.
func (d *Document) Restore(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	snap := &snapshot{
		revision:   in.Revision,
		rawContent: in.RawContent,
		normalized: Normalize(in.RawContent),
		idCounter:  in.IDCounter,
	}
	for _, b := range in.Blocks {
		snap.blocks = append(snap.blocks, &Block{
			ID:        b.ID,
			Hash:      b.Hash,
			StartLine: b.StartLine,
			LineCount: b.LineCount,
			Content:   b.Content,
			Kind:      kindFromString(b.Kind),
			Language:  b.Language,
		})
		if b.ID > BlockID(snap.idCounter) {
			snap.idCounter = int64(b.ID)
		}
	}
	snap.rebuildIndex()
	d.snap = snap
	return nil
}

// kindFromString is the inverse of BlockKind.String; unknown names map to
// KindRaw.
func kindFromString(s string) BlockKind {
	switch s {
	case "paragraph":
		return KindParagraph
	case "heading":
		return KindHeading
	case "list":
		return KindList
	case "blockquote":
		return KindBlockquote
	case "code":
		return KindCodeBlock
	case "thematicbreak":
		return KindThematicBreak
	case "html":
		return KindHTMLBlock
	case "table":
		return KindTable
	case "math":
		return KindMath
	default:
		return KindRaw
	}
}
