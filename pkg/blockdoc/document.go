package blockdoc

import (
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Document is the incremental block model for a single source document.
//
// Document is single-threaded: callers must serialize Update and payload
// mutations against each other. Render jobs for different blocks may run
// concurrently outside the model, but a second Update fully supersedes the
// command list of the previous one; applying a stale command list after a
// newer Update is caller error.
type Document struct {
	splitter Splitter
	hasher   Hasher
	snap     *snapshot
}

// snapshot is one installed version of the document. Snapshots are replaced
// wholesale on every update, never mutated in place across updates.
type snapshot struct {
	revision   string
	blocks     []*Block
	rawContent string
	normalized string
	idCounter  int64
	indexByID  map[BlockID]int
}

// New creates a Document using the given splitter and the default SHA-256
// content hasher.
func New(split Splitter) *Document {
	return NewWithHasher(split, DefaultHasher)
}

// NewWithHasher creates a Document with a custom content hasher.
// The hasher must be deterministic within the process lifetime.
func NewWithHasher(split Splitter, hash Hasher) *Document {
	if hash == nil {
		hash = DefaultHasher
	}
	return &Document{splitter: split, hasher: hash}
}

// Update normalizes and splits text, matches the result against the current
// snapshot, installs the new snapshot, and returns the ordered command list
// that transforms the render target.
//
// Update is total: it never panics and has no error return. Malformed or
// empty splitter output is treated as an empty document.
func (d *Document) Update(text string) CommandResult {
	normalized := Normalize(text)

	var raws []RawBlock
	if d.splitter != nil {
		raws = sanitizeRaw(d.splitter.Split(normalized))
	}

	hashes := make([]string, len(raws))
	for i, r := range raws {
		hashes[i] = d.hasher(r.Content)
	}

	first := d.snap == nil
	var old []*Block
	var counter int64
	if !first {
		old = d.snap.blocks
		counter = d.snap.idCounter
	}

	next := &snapshot{
		rawContent: text,
		normalized: normalized,
		idCounter:  counter,
	}

	var cmds []Command
	var counters Counters

	switch {
	case first:
		// Degenerate first update: nothing to preserve, everything is an
		// insert behind a single clear.
		cmds = append(cmds, Command{Kind: CmdClear})
		for i, r := range raws {
			blk := next.mint(r, hashes[i])
			next.blocks = append(next.blocks, blk)
			a := blk.attrs()
			cmds = append(cmds, Command{Kind: CmdAppend, BlockID: blk.ID, Attrs: &a})
			counters.Inserted++
		}

	case len(raws) == 0:
		if len(old) > 0 {
			cmds = append(cmds, Command{Kind: CmdClear})
			counters.Removed = len(old)
		}

	default:
		match := matchBlocks(old, hashes)
		next.blocks = assignIdentity(next, old, raws, hashes, match)
		cmds, counters = generateCommands(old, next.blocks, &match)
	}

	next.revision = ulid.Make().String()
	next.rebuildIndex()
	d.snap = next

	return CommandResult{Commands: cmds, Counters: counters, Revision: next.revision}
}

// assignIdentity builds the new block sequence: kept blocks inherit the
// matched old block's ID and payload, inserted blocks get a fresh ID and no
// payload.
func assignIdentity(next *snapshot, old []*Block, raws []RawBlock, hashes []string, match matchResult) []*Block {
	blocks := make([]*Block, len(raws))

	for _, pair := range match.keeps {
		prev := old[pair.oldIndex]
		r := raws[pair.newIndex]
		blocks[pair.newIndex] = &Block{
			ID:        prev.ID,
			Hash:      prev.Hash,
			StartLine: r.StartLine,
			LineCount: r.LineCount(),
			Content:   r.Content,
			Kind:      r.Kind,
			Language:  r.Language,
			Payload:   prev.Payload,
		}
	}
	for _, newIdx := range match.inserts {
		blocks[newIdx] = next.mint(raws[newIdx], hashes[newIdx])
	}

	return blocks
}

// mint allocates a fresh block for a raw split result.
func (s *snapshot) mint(r RawBlock, hash string) *Block {
	s.idCounter++
	return &Block{
		ID:        BlockID(s.idCounter),
		Hash:      hash,
		StartLine: r.StartLine,
		LineCount: r.LineCount(),
		Content:   r.Content,
		Kind:      r.Kind,
		Language:  r.Language,
	}
}

// rebuildIndex rebuilds the id lookup wholesale. The ordered sequence is
// the single source of truth; the index is derived and never patched
// incrementally.
func (s *snapshot) rebuildIndex() {
	s.indexByID = make(map[BlockID]int, len(s.blocks))
	for i, b := range s.blocks {
		s.indexByID[b.ID] = i
	}
}

// LineCount returns the number of content lines in the raw block, counting
// content lines only (trailing blank padding is not part of the block).
func (r RawBlock) LineCount() int {
	trimmed := strings.TrimRight(r.Content, "\n")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "\n") + 1
}

// sanitizeRaw clamps malformed splitter output: nil content entries are
// dropped, non-positive start lines are clamped to 1, out-of-order blocks
// are sorted by start line, and overlapping ranges are pushed down past the
// previous block's end so snapshot invariants hold.
func sanitizeRaw(raws []RawBlock) []RawBlock {
	out := raws[:0]
	for _, r := range raws {
		if r.Content == "" {
			continue
		}
		if r.StartLine < 1 {
			r.StartLine = 1
		}
		out = append(out, r)
	}
	if !sort.SliceIsSorted(out, func(i, j int) bool { return out[i].StartLine < out[j].StartLine }) {
		sort.SliceStable(out, func(i, j int) bool { return out[i].StartLine < out[j].StartLine })
	}
	for i := 1; i < len(out); i++ {
		if prevEnd := out[i-1].StartLine + out[i-1].LineCount(); out[i].StartLine < prevEnd {
			out[i].StartLine = prevEnd
		}
	}
	return out
}

// BlockCount returns the number of blocks in the current snapshot.
func (d *Document) BlockCount() int {
	if d.snap == nil {
		return 0
	}
	return len(d.snap.blocks)
}

// Block returns the block at index, or nil when out of range.
func (d *Document) Block(index int) *Block {
	if d.snap == nil || index < 0 || index >= len(d.snap.blocks) {
		return nil
	}
	return d.snap.blocks[index]
}

// Blocks returns the current ordered block sequence. The returned slice is
// shared with the snapshot and must not be modified.
func (d *Document) Blocks() []*Block {
	if d.snap == nil {
		return nil
	}
	return d.snap.blocks
}

// BlockByID returns the block with the given identity, or nil.
func (d *Document) BlockByID(id BlockID) *Block {
	idx := d.BlockIndexByID(id)
	if idx < 0 {
		return nil
	}
	return d.snap.blocks[idx]
}

// BlockIndexByID returns the index of the block with the given identity,
// or -1 when the identity is not part of the current snapshot.
func (d *Document) BlockIndexByID(id BlockID) int {
	if d.snap == nil {
		return -1
	}
	idx, ok := d.snap.indexByID[id]
	if !ok {
		return -1
	}
	return idx
}

// Revision returns the ULID of the current snapshot, or "" before the
// first update.
func (d *Document) Revision() string {
	if d.snap == nil {
		return ""
	}
	return d.snap.revision
}

// RawContent returns the raw source text of the current snapshot.
func (d *Document) RawContent() string {
	if d.snap == nil {
		return ""
	}
	return d.snap.rawContent
}

// SetPayload attaches a completed render output to the block with the
// given identity. It reports whether the identity exists in the current
// snapshot; payloads for superseded identities are dropped.
// Payload mutation never affects diffing.
func (d *Document) SetPayload(id BlockID, data string) bool {
	blk := d.BlockByID(id)
	if blk == nil {
		return false
	}
	blk.Payload = &Payload{Data: data}
	return true
}

// SetPayloadAt attaches a completed render output by index.
func (d *Document) SetPayloadAt(index int, data string) bool {
	blk := d.Block(index)
	if blk == nil {
		return false
	}
	blk.Payload = &Payload{Data: data}
	return true
}

// SetPendingPayload attaches a placeholder payload that still needs to be
// resolved; the block remains in the render-needed queue.
func (d *Document) SetPendingPayload(id BlockID, data string) bool {
	blk := d.BlockByID(id)
	if blk == nil {
		return false
	}
	blk.Payload = &Payload{Data: data, Pending: true}
	return true
}

// BlocksNeedingRender returns the blocks that have no payload yet or whose
// payload is still pending, in document order. External renderers poll this
// after applying a command list.
func (d *Document) BlocksNeedingRender() []*Block {
	if d.snap == nil {
		return nil
	}
	var out []*Block
	for _, b := range d.snap.blocks {
		if b.NeedsRender() {
			out = append(out, b)
		}
	}
	return out
}

// Stats summarizes the current snapshot for logs and CLI output.
type Stats struct {
	Blocks      int    `json:"blocks"`
	NeedsRender int    `json:"needsRender"`
	Lines       int    `json:"lines"`
	Revision    string `json:"revision"`
}

// Stats returns summary counters for the current snapshot.
func (d *Document) Stats() Stats {
	if d.snap == nil {
		return Stats{}
	}
	st := Stats{Blocks: len(d.snap.blocks), Revision: d.snap.revision}
	for _, b := range d.snap.blocks {
		if b.NeedsRender() {
			st.NeedsRender++
		}
		if end := b.EndLine() - 1; end > st.Lines {
			st.Lines = end
		}
	}
	return st
}
