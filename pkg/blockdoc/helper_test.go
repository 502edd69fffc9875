package blockdoc_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

// paragraphSplit is a minimal test splitter: blocks are runs of non-blank
// lines separated by blank lines, with 1-based start lines.
func paragraphSplit(text string) []blockdoc.RawBlock {
	lines := strings.Split(text, "\n")

	var raws []blockdoc.RawBlock
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		start := i
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			i++
		}
		raws = append(raws, blockdoc.RawBlock{
			Content:   strings.Join(lines[start:i], "\n"),
			StartLine: start + 1,
			Kind:      blockdoc.KindParagraph,
		})
	}
	return raws
}

func newTestDocument() *blockdoc.Document {
	return blockdoc.New(blockdoc.SplitFunc(paragraphSplit))
}

// commandKinds extracts the kind sequence from a command list.
func commandKinds(cmds []blockdoc.Command) []blockdoc.CommandKind {
	kinds := make([]blockdoc.CommandKind, len(cmds))
	for i, c := range cmds {
		kinds[i] = c.Kind
	}
	return kinds
}

// renderTarget simulates a keyed render target: an ordered list of node
// identities mutated by applying commands strictly in emission order.
type renderTarget struct {
	ids []blockdoc.BlockID
}

func (rt *renderTarget) apply(t *testing.T, cmds []blockdoc.Command) {
	t.Helper()
	for _, c := range cmds {
		switch c.Kind {
		case blockdoc.CmdClear:
			rt.ids = nil
		case blockdoc.CmdAppend:
			rt.ids = append(rt.ids, c.BlockID)
		case blockdoc.CmdInsertBefore:
			i := rt.indexOf(c.Ref)
			if i < 0 {
				t.Fatalf("insertBefore references unknown node %d", c.Ref)
			}
			inserted := append([]blockdoc.BlockID{c.BlockID}, rt.ids[i:]...)
			rt.ids = append(rt.ids[:i], inserted...)
		case blockdoc.CmdRemove:
			i := rt.indexOf(c.BlockID)
			if i < 0 {
				t.Fatalf("remove references unknown node %d", c.BlockID)
			}
			rt.ids = append(rt.ids[:i], rt.ids[i+1:]...)
		case blockdoc.CmdReplace:
			i := rt.indexOf(c.Ref)
			if i < 0 {
				t.Fatalf("replace references unknown node %d", c.Ref)
			}
			rt.ids[i] = c.BlockID
		case blockdoc.CmdUpdateAttrs:
			if rt.indexOf(c.BlockID) < 0 {
				t.Fatalf("updateAttrs references unknown node %d", c.BlockID)
			}
		}
	}
}

func (rt *renderTarget) indexOf(id blockdoc.BlockID) int {
	for i, existing := range rt.ids {
		if existing == id {
			return i
		}
	}
	return -1
}

func kindsEqual(got, expected []blockdoc.CommandKind) bool {
	if len(got) != len(expected) {
		return false
	}
	for i := range got {
		if got[i] != expected[i] {
			return false
		}
	}
	return true
}
