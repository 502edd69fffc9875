package blockdoc_test

import (
	"testing"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

func TestFirstUpdateInsertsEverything(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	res := doc.Update("alpha\n\nbeta\n\ngamma")

	if res.Counters.Inserted != 3 || res.Counters.Removed != 0 || res.Counters.Kept != 0 {
		t.Fatalf("unexpected counters: %+v", res.Counters)
	}

	expected := []blockdoc.CommandKind{
		blockdoc.CmdClear,
		blockdoc.CmdAppend, blockdoc.CmdAppend, blockdoc.CmdAppend,
	}
	if !kindsEqual(commandKinds(res.Commands), expected) {
		t.Fatalf("unexpected command sequence: %v", commandKinds(res.Commands))
	}

	if doc.BlockCount() != 3 {
		t.Fatalf("expected 3 blocks, got %d", doc.BlockCount())
	}
	if res.Revision == "" || res.Revision != doc.Revision() {
		t.Errorf("revision not installed: %q vs %q", res.Revision, doc.Revision())
	}
}

func TestIdentityStability(t *testing.T) {
	t.Parallel()

	text := "alpha\n\nbeta\n\ngamma"
	doc := newTestDocument()
	doc.Update(text)

	ids := make([]blockdoc.BlockID, doc.BlockCount())
	for i := range ids {
		ids[i] = doc.Block(i).ID
		doc.SetPayloadAt(i, "rendered")
	}

	res := doc.Update(text)

	if res.Counters.Inserted != 0 || res.Counters.Removed != 0 || res.Counters.Replaced != 0 {
		t.Fatalf("update with unchanged text mutated structure: %+v", res.Counters)
	}
	if res.Counters.Kept != 3 {
		t.Fatalf("expected 3 kept, got %d", res.Counters.Kept)
	}
	if len(res.Commands) != 0 {
		t.Fatalf("expected no commands for unchanged text, got %v", commandKinds(res.Commands))
	}

	for i, id := range ids {
		blk := doc.Block(i)
		if blk.ID != id {
			t.Errorf("block %d changed id: %d -> %d", i, id, blk.ID)
		}
		if blk.Payload == nil || blk.Payload.Data != "rendered" {
			t.Errorf("block %d lost its payload", i)
		}
	}
}

func TestIDUniqueness(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("a\n\nb\n\nc")
	doc.Update("c\n\na\n\nd\n\nb")
	doc.Update("d\n\nd2\n\nc")

	seen := make(map[blockdoc.BlockID]bool)
	for i := 0; i < doc.BlockCount(); i++ {
		id := doc.Block(i).ID
		if seen[id] {
			t.Fatalf("duplicate block id %d", id)
		}
		seen[id] = true
	}
}

func TestInsertion(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\ngamma")
	idA := doc.Block(0).ID
	idC := doc.Block(1).ID
	doc.SetPayload(idA, "html-a")
	doc.SetPayload(idC, "html-c")

	res := doc.Update("alpha\n\nbeta\n\ngamma")

	if res.Counters.Inserted != 1 || res.Counters.Removed != 0 || res.Counters.Kept != 2 {
		t.Fatalf("unexpected counters: %+v", res.Counters)
	}

	var insert *blockdoc.Command
	for i := range res.Commands {
		if res.Commands[i].Kind == blockdoc.CmdInsertBefore {
			insert = &res.Commands[i]
		}
		if res.Commands[i].Kind == blockdoc.CmdRemove {
			t.Fatalf("unexpected remove in insertion-only update")
		}
	}
	if insert == nil {
		t.Fatal("expected an insertBefore command")
	}
	if insert.Ref != idC {
		t.Errorf("insert should reference gamma (%d), got %d", idC, insert.Ref)
	}
	if insert.Payload != "" {
		t.Errorf("fresh insert must carry no payload, got %q", insert.Payload)
	}

	if doc.Block(0).ID != idA || doc.Block(2).ID != idC {
		t.Error("kept blocks changed identity")
	}
	if doc.Block(0).Payload == nil || doc.Block(2).Payload == nil {
		t.Error("kept blocks lost payloads")
	}
	if doc.Block(1).Payload != nil {
		t.Error("inserted block must start without payload")
	}
}

func TestDeletion(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\nbeta\n\ngamma")
	idA := doc.Block(0).ID
	idB := doc.Block(1).ID
	idC := doc.Block(2).ID
	doc.SetPayload(idA, "a")
	doc.SetPayload(idC, "c")

	res := doc.Update("alpha\n\ngamma")

	if res.Counters.Removed != 1 || res.Counters.Inserted != 0 || res.Counters.Kept != 2 {
		t.Fatalf("unexpected counters: %+v", res.Counters)
	}

	removes := 0
	for _, c := range res.Commands {
		if c.Kind == blockdoc.CmdRemove {
			removes++
			if c.BlockID != idB {
				t.Errorf("remove targets %d, expected beta (%d)", c.BlockID, idB)
			}
		}
	}
	if removes != 1 {
		t.Fatalf("expected exactly one remove, got %d", removes)
	}

	if doc.Block(0).ID != idA || doc.Block(1).ID != idC {
		t.Error("kept blocks changed identity")
	}
	if doc.Block(0).Payload == nil || doc.Block(1).Payload == nil {
		t.Error("kept blocks lost payloads")
	}
}

func TestReuseUnderRelocation(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\nbeta\n\ngamma")
	idA := doc.Block(0).ID
	idB := doc.Block(1).ID
	idC := doc.Block(2).ID
	doc.SetPayload(idA, "payload-a")
	doc.SetPayload(idB, "payload-b")
	doc.SetPayload(idC, "payload-c")

	res := doc.Update("beta\n\nalpha\n\ngamma")

	// Data identity and payloads persist for all three blocks.
	if got := doc.BlockByID(idA); got == nil || got.Payload == nil || got.Payload.Data != "payload-a" {
		t.Error("alpha lost identity or payload")
	}
	if got := doc.BlockByID(idB); got == nil || got.Payload == nil || got.Payload.Data != "payload-b" {
		t.Error("beta lost identity or payload")
	}
	if got := doc.BlockByID(idC); got == nil || got.Payload == nil || got.Payload.Data != "payload-c" {
		t.Error("gamma lost identity or payload")
	}

	// New order installed.
	if doc.Block(0).ID != idB || doc.Block(1).ID != idA || doc.Block(2).ID != idC {
		t.Errorf("unexpected order: %d %d %d", doc.Block(0).ID, doc.Block(1).ID, doc.Block(2).ID)
	}

	// The order violation forces at least one remove+insert pair, and the
	// re-inserted node carries its preserved payload.
	if res.Counters.Removed < 1 || res.Counters.Inserted < 1 {
		t.Fatalf("expected a remove+insert for the moved block: %+v", res.Counters)
	}
	foundCarried := false
	for _, c := range res.Commands {
		if (c.Kind == blockdoc.CmdInsertBefore || c.Kind == blockdoc.CmdAppend) && c.Payload != "" {
			foundCarried = true
		}
	}
	if !foundCarried {
		t.Error("moved block's insert must carry its preserved payload")
	}
}

func TestContentEditReplacesBlock(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\nbeta\n\ngamma")
	idB := doc.Block(1).ID
	doc.SetPayload(idB, "stale")

	res := doc.Update("alpha\n\nbeta edited\n\ngamma")

	if res.Counters.Replaced != 1 {
		t.Fatalf("expected one replace, got %+v", res.Counters)
	}

	var replace *blockdoc.Command
	for i := range res.Commands {
		if res.Commands[i].Kind == blockdoc.CmdReplace {
			replace = &res.Commands[i]
		}
	}
	if replace == nil {
		t.Fatal("expected a replace command")
	}
	if replace.Ref != idB {
		t.Errorf("replace should target beta's node (%d), got %d", idB, replace.Ref)
	}

	edited := doc.Block(1)
	if edited.ID == idB {
		t.Error("content-changed block must get a fresh id")
	}
	if edited.Payload != nil {
		t.Error("content-changed block must not inherit the stale payload")
	}
	if replace.BlockID != edited.ID {
		t.Errorf("replace carries id %d, block has %d", replace.BlockID, edited.ID)
	}
}

func TestCommandsTransformTarget(t *testing.T) {
	t.Parallel()

	// Applying the emitted command list strictly in order must leave a
	// keyed render target in exactly the new snapshot's node order.
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{
			name: "tail rewrite",
			old:  "alpha\n\nbeta\n\ngamma",
			new:  "gamma\n\ndelta",
		},
		{
			name: "content edit",
			old:  "alpha\n\nbeta\n\ngamma",
			new:  "alpha\n\nbeta edited\n\ngamma",
		},
		{
			name: "swap",
			old:  "alpha\n\nbeta\n\ngamma",
			new:  "beta\n\nalpha\n\ngamma",
		},
		{
			name: "move with trailing insert",
			old:  "alpha\n\nbeta\n\ngamma",
			new:  "beta\n\nalpha\n\ndelta",
		},
		{
			name: "gap fill",
			old:  "alpha\n\ngamma",
			new:  "alpha\n\nb1\n\nb2\n\ngamma",
		},
		{
			name: "interleaved churn",
			old:  "a\n\nb\n\nc\n\nd",
			new:  "d\n\nx\n\nb\n\ny",
		},
		{
			name: "full rewrite",
			old:  "a\n\nb",
			new:  "x\n\ny\n\nz",
		},
		{
			name: "duplicates reshuffled",
			old:  "same\n\nother\n\nsame",
			new:  "other\n\nsame\n\nsame\n\nnew",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			doc := newTestDocument()
			target := &renderTarget{}
			target.apply(t, doc.Update(testCase.old).Commands)
			target.apply(t, doc.Update(testCase.new).Commands)

			want := make([]blockdoc.BlockID, doc.BlockCount())
			for i := range want {
				want[i] = doc.Block(i).ID
			}
			if len(target.ids) != len(want) {
				t.Fatalf("target has %d nodes, snapshot has %d", len(target.ids), len(want))
			}
			for i := range want {
				if target.ids[i] != want[i] {
					t.Fatalf("target order %v, snapshot order %v", target.ids, want)
				}
			}
		})
	}
}

func TestReplaceOnlyForInPlaceEdits(t *testing.T) {
	t.Parallel()

	// An insertion that does not take over a deleted node's slot must not
	// become a replace: here the deleted blocks precede the kept block and
	// the new block follows it.
	doc := newTestDocument()
	doc.Update("alpha\n\nbeta\n\ngamma")
	idC := doc.Block(2).ID

	res := doc.Update("gamma\n\ndelta")

	for _, c := range res.Commands {
		if c.Kind == blockdoc.CmdReplace {
			t.Fatalf("cross-slot edit emitted a replace: %v", commandKinds(res.Commands))
		}
	}
	if res.Counters.Removed != 2 || res.Counters.Inserted != 1 || res.Counters.Kept != 1 {
		t.Fatalf("unexpected counters: %+v", res.Counters)
	}
	if doc.Block(0).ID != idC {
		t.Error("gamma lost its identity")
	}
}

func TestUpdateAttrsOnLineShift(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\ngamma")
	idC := doc.Block(1).ID

	// Inserting beta shifts gamma down; gamma stays kept but its mirrored
	// line attributes must be refreshed.
	res := doc.Update("alpha\n\nbeta\n\ngamma")

	var attrs *blockdoc.Attrs
	for _, c := range res.Commands {
		if c.Kind == blockdoc.CmdUpdateAttrs && c.BlockID == idC {
			attrs = c.Attrs
		}
	}
	if attrs == nil {
		t.Fatal("expected updateAttrs for the shifted kept block")
	}
	if attrs.StartLine != 5 {
		t.Errorf("expected startLine 5, got %d", attrs.StartLine)
	}

	// A no-op second update must not re-emit attrs.
	res = doc.Update("alpha\n\nbeta\n\ngamma")
	for _, c := range res.Commands {
		if c.Kind == blockdoc.CmdUpdateAttrs {
			t.Error("redundant updateAttrs emitted for unchanged metadata")
		}
	}
}

func TestDuplicateHashNearestPosition(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("heading\n\nalpha\n\nheading")
	idFirst := doc.Block(0).ID
	idSecond := doc.Block(2).ID

	// Swap the unique block to the front; each duplicate heading should
	// keep the id of the old heading nearest to its new position.
	doc.Update("alpha\n\nheading\n\nheading")

	if doc.Block(1).ID != idFirst && doc.Block(1).ID != idSecond {
		t.Fatal("duplicate heading did not reuse an existing identity")
	}
	if doc.Block(1).ID == doc.Block(2).ID {
		t.Fatal("both duplicates claimed the same identity")
	}
}

func TestMatchDuplicateTriples(t *testing.T) {
	t.Parallel()

	// Three identical blocks: identity must be stable positionally, and
	// the tie-break must prefer the smaller old index on equal distance.
	doc := newTestDocument()
	doc.Update("same\n\nsame\n\nsame")
	ids := []blockdoc.BlockID{doc.Block(0).ID, doc.Block(1).ID, doc.Block(2).ID}

	res := doc.Update("same\n\nsame\n\nsame")
	if res.Counters.Kept != 3 || res.Counters.Inserted != 0 {
		t.Fatalf("unexpected counters: %+v", res.Counters)
	}
	for i, id := range ids {
		if doc.Block(i).ID != id {
			t.Errorf("duplicate block %d changed id: %d -> %d", i, id, doc.Block(i).ID)
		}
	}

	// Dropping the middle duplicate keeps the outer identities.
	res = doc.Update("same\n\nsame")
	if res.Counters.Kept != 2 || res.Counters.Removed != 1 {
		t.Fatalf("unexpected counters after shrink: %+v", res.Counters)
	}
	if doc.Block(0).ID != ids[0] {
		t.Errorf("first duplicate changed id: %d -> %d", ids[0], doc.Block(0).ID)
	}
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()

	res := doc.Update("")
	if doc.BlockCount() != 0 {
		t.Fatalf("expected empty snapshot, got %d blocks", doc.BlockCount())
	}
	if !kindsEqual(commandKinds(res.Commands), []blockdoc.CommandKind{blockdoc.CmdClear}) {
		t.Fatalf("first empty update should emit a bare clear, got %v", commandKinds(res.Commands))
	}

	doc.Update("alpha\n\nbeta")
	res = doc.Update("")
	if !kindsEqual(commandKinds(res.Commands), []blockdoc.CommandKind{blockdoc.CmdClear}) {
		t.Fatalf("clearing prior content should emit a single clear, got %v", commandKinds(res.Commands))
	}
	if res.Counters.Removed != 2 {
		t.Errorf("expected 2 removed, got %d", res.Counters.Removed)
	}

	// Emptying an already empty document emits nothing.
	res = doc.Update("   \n\n  ")
	if len(res.Commands) != 0 {
		t.Errorf("expected no commands, got %v", commandKinds(res.Commands))
	}
}

func TestUpdateSanitizesSplitterOutput(t *testing.T) {
	t.Parallel()

	// A misbehaving splitter reports empty, out-of-order, and overlapping
	// entries; the installed snapshot must still satisfy the non-overlap
	// invariant.
	rogue := blockdoc.SplitFunc(func(string) []blockdoc.RawBlock {
		return []blockdoc.RawBlock{
			{Content: "third", StartLine: 4, Kind: blockdoc.KindParagraph},
			{Content: "first\nsecond line", StartLine: 0, Kind: blockdoc.KindParagraph},
			{Content: "", StartLine: 2},
			{Content: "second", StartLine: 2, Kind: blockdoc.KindParagraph},
		}
	})

	doc := blockdoc.New(rogue)
	doc.Update("whatever")

	if doc.BlockCount() != 3 {
		t.Fatalf("expected 3 blocks after dropping the empty entry, got %d", doc.BlockCount())
	}
	prevEnd := 0
	for i := 0; i < doc.BlockCount(); i++ {
		blk := doc.Block(i)
		if blk.StartLine < 1 {
			t.Errorf("block %d has start line %d", i, blk.StartLine)
		}
		if blk.StartLine < prevEnd {
			t.Errorf("block %d overlaps its predecessor: start %d, previous end %d",
				i, blk.StartLine, prevEnd)
		}
		prevEnd = blk.EndLine()
	}
}

func TestLookupsRebuiltPerUpdate(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\nbeta")
	idA := doc.Block(0).ID

	doc.Update("beta\n\nalpha")

	if idx := doc.BlockIndexByID(idA); idx != 1 {
		t.Errorf("expected alpha at index 1 after swap, got %d", idx)
	}
	if doc.BlockByID(999) != nil {
		t.Error("unknown id should return nil")
	}
	if doc.BlockIndexByID(999) != -1 {
		t.Error("unknown id should return -1")
	}
	if doc.Block(-1) != nil || doc.Block(5) != nil {
		t.Error("out-of-range index should return nil")
	}
}

func TestBlocksNeedingRender(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	doc.Update("alpha\n\nbeta\n\ngamma")

	if got := len(doc.BlocksNeedingRender()); got != 3 {
		t.Fatalf("expected all 3 blocks pending render, got %d", got)
	}

	doc.SetPayloadAt(0, "done")
	doc.SetPendingPayload(doc.Block(1).ID, "placeholder")

	needing := doc.BlocksNeedingRender()
	if len(needing) != 2 {
		t.Fatalf("expected 2 blocks needing render, got %d", len(needing))
	}
	if needing[0].ID != doc.Block(1).ID {
		t.Error("pending-payload block must stay in the render queue")
	}

	if doc.SetPayload(12345, "x") {
		t.Error("setting payload for unknown id must report false")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()
	if st := doc.Stats(); st.Blocks != 0 {
		t.Fatalf("expected zero stats before first update, got %+v", st)
	}

	doc.Update("alpha\n\nbeta line1\nbeta line2")
	doc.SetPayloadAt(0, "done")

	st := doc.Stats()
	if st.Blocks != 2 || st.NeedsRender != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.Lines != 4 {
		t.Errorf("expected last content line 4, got %d", st.Lines)
	}
	if st.Revision != doc.Revision() {
		t.Error("stats revision mismatch")
	}
}
