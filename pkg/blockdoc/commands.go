package blockdoc

import (
	"encoding/json"
	"fmt"
)

// CommandKind identifies a primitive mutation of the render target.
type CommandKind uint8

// The closed command set. Commands must be applied strictly in emission
// order; out-of-order application is undefined behavior for this contract.
const (
	// CmdClear empties the render target.
	CmdClear CommandKind = iota

	// CmdAppend appends a new node for BlockID at the end of the target.
	CmdAppend

	// CmdInsertBefore inserts a new node for BlockID before the existing
	// node identified by Ref.
	CmdInsertBefore

	// CmdRemove removes the existing node identified by BlockID.
	CmdRemove

	// CmdReplace swaps the existing node identified by Ref with a new node
	// for BlockID.
	CmdReplace

	// CmdUpdateAttrs refreshes the mirrored attributes on the node
	// identified by BlockID without touching its content.
	CmdUpdateAttrs
)

// String returns the wire name of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CmdClear:
		return "clear"
	case CmdAppend:
		return "append"
	case CmdInsertBefore:
		return "insertBefore"
	case CmdRemove:
		return "remove"
	case CmdReplace:
		return "replace"
	default:
		return "updateAttrs"
	}
}

// MarshalJSON encodes the kind as its wire name.
func (k CommandKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a wire name back into the kind.
func (k *CommandKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "clear":
		*k = CmdClear
	case "append":
		*k = CmdAppend
	case "insertBefore":
		*k = CmdInsertBefore
	case "remove":
		*k = CmdRemove
	case "replace":
		*k = CmdReplace
	case "updateAttrs":
		*k = CmdUpdateAttrs
	default:
		return fmt.Errorf("unknown command kind %q", s)
	}
	return nil
}

// Command is one primitive mutation of the render target.
//
// Field usage by kind:
//   - clear: no fields
//   - append, insertBefore, replace: BlockID, Attrs, Payload; insertBefore
//     and replace also set Ref (the existing node being targeted)
//   - remove: BlockID
//   - updateAttrs: BlockID, Attrs
type Command struct {
	Kind    CommandKind `json:"kind"`
	BlockID BlockID     `json:"blockId,omitempty"`
	Ref     BlockID     `json:"ref,omitempty"`
	Attrs   *Attrs      `json:"attrs,omitempty"`

	// Payload carries the preserved render output for a re-inserted moved
	// block. Empty for fresh inserts, whose output is produced later via
	// the render-needed queue.
	Payload string `json:"payload,omitempty"`
}

// Counters summarizes an update for callers and logs.
// A kept block re-emitted because of an order violation counts as
// removed+inserted, since its rendered node is rebuilt even though its data
// identity and payload persist.
type Counters struct {
	Kept     int `json:"kept"`
	Inserted int `json:"inserted"`
	Removed  int `json:"removed"`
	Replaced int `json:"replaced"`
}

// CommandResult is the outcome of Document.Update: the ordered command list
// to apply to the render target, plus summary counters and the revision of
// the snapshot the commands produce.
type CommandResult struct {
	Commands []Command `json:"commands"`
	Counters Counters  `json:"counters"`
	Revision string    `json:"revision"`
}

// generateCommands turns a match correspondence into the ordered command
// list, mutating match.keeps in place to flag order violations.
//
// Emission order: removes for unpaired deletion candidates first, then a
// single in-order walk of the new sequence emitting updateAttrs, replace,
// and insert commands. A moved keep contributes its own remove immediately
// before its re-insertion.
func generateCommands(old, blocks []*Block, match *matchResult) ([]Command, Counters) {
	var cmds []Command
	var counters Counters

	// Order-violation pass: a kept block whose old index precedes the
	// running maximum moved backward relative to its neighbors and cannot
	// be left in place. Runs first because replace pairing only trusts
	// keeps that stay put.
	flagOrderViolations(match.keeps)

	keptAt := make(map[int]*keepPair, len(match.keeps))
	for i := range match.keeps {
		keptAt[match.keeps[i].newIndex] = &match.keeps[i]
	}

	pairs := replacePairs(blocks, keptAt, match)
	pairedOld := make(map[int]bool, len(pairs))
	for _, oldIdx := range pairs {
		pairedOld[oldIdx] = true
	}

	// Unpaired removes go first so the target never holds two nodes
	// claiming the same slot.
	for _, oldIdx := range match.deletes {
		if pairedOld[oldIdx] {
			continue
		}
		cmds = append(cmds, Command{Kind: CmdRemove, BlockID: old[oldIdx].ID})
		counters.Removed++
	}

	for newIdx, blk := range blocks {
		pair := keptAt[newIdx]
		pairedDelete, isReplace := pairs[newIdx]

		switch {
		case pair != nil && !pair.moved:
			counters.Kept++
			prev := old[pair.oldIndex]
			if prev.StartLine != blk.StartLine || prev.LineCount != blk.LineCount {
				a := blk.attrs()
				cmds = append(cmds, Command{Kind: CmdUpdateAttrs, BlockID: blk.ID, Attrs: &a})
			}

		case isReplace:
			a := blk.attrs()
			cmds = append(cmds, Command{Kind: CmdReplace, BlockID: blk.ID, Ref: old[pairedDelete].ID, Attrs: &a})
			counters.Replaced++

		default:
			// Moved keep or pure insert: place before the nearest following
			// kept-and-not-moved block, or append at the end.
			var payload string
			if pair != nil {
				cmds = append(cmds, Command{Kind: CmdRemove, BlockID: blk.ID})
				counters.Removed++
				if blk.Payload != nil {
					payload = blk.Payload.Data
				}
			}
			a := blk.attrs()
			ref := nextStableRef(blocks, keptAt, newIdx+1)
			if ref != 0 {
				cmds = append(cmds, Command{Kind: CmdInsertBefore, BlockID: blk.ID, Ref: ref, Attrs: &a, Payload: payload})
			} else {
				cmds = append(cmds, Command{Kind: CmdAppend, BlockID: blk.ID, Attrs: &a, Payload: payload})
			}
			counters.Inserted++
		}
	}

	return cmds, counters
}

// replacePairs pairs insertion candidates with deletion candidates so a
// content edit costs a single replace instead of remove+insert. The result
// maps a paired insert's new index to its deletion's old index.
//
// A replaced node keeps the old node's position in the target, so a pair is
// only safe when both sides sit in the same gap between two stable (kept,
// not moved) blocks. Within a gap, pairing covers the leading run of pure
// inserts, first insert to first deletion: those are exactly the new blocks
// that must precede everything re-added via insertBefore/append, which lands
// behind the replaced nodes. A moved keep ends the run for its gap, since
// its re-insertion would have to land before any later replaced node.
func replacePairs(blocks []*Block, keptAt map[int]*keepPair, match *matchResult) map[int]int {
	if len(match.inserts) == 0 || len(match.deletes) == 0 {
		return nil
	}

	// Stable keeps, ordered by new index. None of them violates order, so
	// their old indices ascend as well and gaps line up on both sides.
	var stable []keepPair
	for _, p := range match.keeps {
		if !p.moved {
			stable = append(stable, p)
		}
	}

	// Bucket deletion candidates by gap: the number of stable keeps whose
	// old index precedes them.
	deletesByGap := make(map[int][]int)
	for _, oldIdx := range match.deletes {
		g := 0
		for _, p := range stable {
			if p.oldIndex < oldIdx {
				g++
			}
		}
		deletesByGap[g] = append(deletesByGap[g], oldIdx)
	}

	insertSet := make(map[int]bool, len(match.inserts))
	for _, newIdx := range match.inserts {
		insertSet[newIdx] = true
	}

	pairs := make(map[int]int)
	taken := make(map[int]int)
	closed := make(map[int]bool)
	gap := 0
	for newIdx := range blocks {
		if p := keptAt[newIdx]; p != nil && !p.moved {
			gap++
			continue
		}
		if closed[gap] {
			continue
		}
		if !insertSet[newIdx] {
			closed[gap] = true
			continue
		}
		ds := deletesByGap[gap]
		if taken[gap] >= len(ds) {
			continue
		}
		pairs[newIdx] = ds[taken[gap]]
		taken[gap]++
	}

	return pairs
}

// flagOrderViolations marks keep-pairs that moved backward relative to
// their neighbors. Pairs are ordered by new index; a pair whose old index
// is below the running maximum sits after a block that used to follow it.
func flagOrderViolations(keeps []keepPair) {
	maxOld := -1
	for i := range keeps {
		if keeps[i].oldIndex < maxOld {
			keeps[i].moved = true
			continue
		}
		maxOld = keeps[i].oldIndex
	}
}

// nextStableRef scans forward from index from for the first kept,
// not-moved block and returns its ID, or 0 when none exists.
func nextStableRef(blocks []*Block, keptAt map[int]*keepPair, from int) BlockID {
	for i := from; i < len(blocks); i++ {
		if pair := keptAt[i]; pair != nil && !pair.moved {
			return blocks[i].ID
		}
	}
	return 0
}
