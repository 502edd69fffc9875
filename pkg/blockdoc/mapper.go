package blockdoc

// Position locates a fractional source line inside the block sequence.
type Position struct {
	// Block is the containing block.
	Block *Block

	// Index is the block's index in the current snapshot.
	Index int

	// Progress is the fractional offset within the block's line range,
	// clamped to [0, 1].
	Progress float64
}

// BlockPosition is a Position keyed by block identity instead of index,
// for render targets that observe identities (indices shift across
// updates, identities do not).
type BlockPosition struct {
	ID       BlockID `json:"blockId"`
	Progress float64 `json:"progress"`
}

// LinePosition locates the block whose line range contains the fractional
// source line. The second return is false for lines beyond the last block;
// during progressive rendering that is a normal outcome, not a fault.
func (d *Document) LinePosition(line float64) (Position, bool) {
	if d.snap == nil {
		return Position{}, false
	}
	for i, b := range d.snap.blocks {
		if b.LineCount == 0 {
			continue
		}
		// Lines falling in the blank gap before a block belong to that
		// block's leading edge.
		if line < float64(b.StartLine) {
			return Position{Block: b, Index: i, Progress: 0}, true
		}
		if b.ContainsLine(line) {
			progress := (line - float64(b.StartLine)) / float64(b.LineCount)
			return Position{Block: b, Index: i, Progress: clamp01(progress)}, true
		}
	}
	return Position{}, false
}

// LineFromPosition is the exact inverse of LinePosition: the fractional
// source line at the given progress through the block at index.
// The second return is false when index is out of range.
func (d *Document) LineFromPosition(index int, progress float64) (float64, bool) {
	blk := d.Block(index)
	if blk == nil {
		return 0, false
	}
	return float64(blk.StartLine) + clamp01(progress)*float64(blk.LineCount), true
}

// BlockPositionFromLine locates a line as a (block identity, progress)
// pair, or nil when the line is beyond the rendered range.
func (d *Document) BlockPositionFromLine(line float64) *BlockPosition {
	pos, ok := d.LinePosition(line)
	if !ok {
		return nil
	}
	return &BlockPosition{ID: pos.Block.ID, Progress: pos.Progress}
}

// LineFromBlockID is the identity-keyed inverse of BlockPositionFromLine.
// The second return is false when the identity is not in the current
// snapshot.
func (d *Document) LineFromBlockID(id BlockID, progress float64) (float64, bool) {
	idx := d.BlockIndexByID(id)
	if idx < 0 {
		return 0, false
	}
	return d.LineFromPosition(idx, progress)
}

// Neighbors holds the nearest blocks around a source line that falls in an
// unrendered gap, for callers that interpolate scroll positions.
type Neighbors struct {
	Previous *Block
	Next     *Block
}

// SurroundingBlocks returns the nearest block ending at or before line and
// the nearest block starting after it. Either side may be nil at the
// document edges.
func (d *Document) SurroundingBlocks(line float64) Neighbors {
	var n Neighbors
	if d.snap == nil {
		return n
	}
	for _, b := range d.snap.blocks {
		if float64(b.EndLine()) <= line {
			n.Previous = b
			continue
		}
		if float64(b.StartLine) > line {
			n.Next = b
			break
		}
		// line falls inside b: it is both boundary neighbors.
		n.Previous = b
		n.Next = b
		break
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
