// Package goldmark provides a blockdoc.Splitter implementation using the
// goldmark library: the source text is parsed once and the document's
// top-level block nodes become the split boundaries.
package goldmark

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
	"github.com/yaklabco/blocksync/pkg/langdetect"
)

// Flavor identifies the Markdown flavor supported by the splitter.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Splitter implements blockdoc.Splitter using goldmark.
// Split is total: it never fails, and unsplittable input yields zero blocks.
type Splitter struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a goldmark-based splitter for the given flavor.
// Supported flavors are "commonmark" and "gfm"; invalid flavors default to
// "commonmark".
func New(flavor string) *Splitter {
	f := flavorOrDefault(flavor)
	return &Splitter{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (s *Splitter) Flavor() string {
	return s.flavor
}

// Split decomposes normalized source text into ordered raw blocks with
// 1-based start lines. Block content covers whole source lines, including
// fence markers and container prefixes; trailing blank padding is never
// part of a block.
func (s *Splitter) Split(input string) []blockdoc.RawBlock {
	source := []byte(input)
	if len(bytes.TrimSpace(source)) == 0 {
		return nil
	}

	doc := s.md.Parser().Parse(text.NewReader(source))
	lines := strings.Split(input, "\n")
	starts := lineStarts(source)

	spans := collectSpans(doc, source, starts)
	resolveSpans(spans, lines)

	raws := make([]blockdoc.RawBlock, 0, len(spans))
	for _, sp := range spans {
		content := strings.Join(lines[sp.start:sp.end+1], "\n")
		raws = append(raws, blockdoc.RawBlock{
			Content:   content,
			StartLine: sp.start + 1,
			Kind:      blockKind(sp.node, content),
			Language:  blockLanguage(sp.node, source, lines, sp.start, sp.end),
		})
	}
	return raws
}

// span is a top-level node's line range, 0-based and inclusive.
// start/end are -1 while the node's source position is still unknown
// (nodes without segments, e.g. thematic breaks and empty fences).
type span struct {
	node  ast.Node
	start int
	end   int
}

// collectSpans derives an initial line range for each top-level child from
// its text segments.
func collectSpans(doc ast.Node, source []byte, starts []int) []*span {
	var spans []*span
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		sp := &span{node: child, start: -1, end: -1}
		if so, eo, ok := nodeSpan(child); ok {
			sp.start = lineOf(starts, so)
			sp.end = lineOf(starts, eo-1)
		}
		spans = append(spans, sp)
	}
	return spans
}

// resolveSpans fills in unknown ranges and widens each block to the whole
// lines it owns.
//
// Unknown spans are resolved right to left: each claims the last non-blank
// line before its successor. Then, left to right, every span extends upward
// and downward over adjacent non-blank lines not owned by its neighbors —
// this attaches fence markers and setext underlines, which have no text
// segments of their own.
func resolveSpans(spans []*span, lines []string) {
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].start != -1 {
			continue
		}
		bound := len(lines)
		if i+1 < len(spans) && spans[i+1].start != -1 {
			bound = spans[i+1].start
		}
		l := bound - 1
		for l > 0 && isBlank(lines[l]) {
			l--
		}
		if l < 0 {
			l = 0
		}
		spans[i].start, spans[i].end = l, l
	}

	prevEnd := -1
	for i, sp := range spans {
		for sp.start-1 > prevEnd && !isBlank(lines[sp.start-1]) {
			sp.start--
		}
		next := len(lines)
		if i+1 < len(spans) {
			next = spans[i+1].start
		}
		for sp.end+1 < next && !isBlank(lines[sp.end+1]) {
			sp.end++
		}
		prevEnd = sp.end
	}
}

// nodeSpan returns the [start, stop) byte range covered by a node's text
// segments, recursing through children to handle containers (lists, block
// quotes, tables) whose own segment list is empty.
func nodeSpan(n ast.Node) (int, int, bool) {
	start, stop := -1, -1

	merge := func(s, e int) {
		if start == -1 || s < start {
			start = s
		}
		if e > stop {
			stop = e
		}
	}

	// Inline nodes panic on Lines(); their position comes from the Text
	// segment case below.
	if n.Type() != ast.TypeInline {
		if lines := n.Lines(); lines != nil {
			for i := range lines.Len() {
				seg := lines.At(i)
				merge(seg.Start, seg.Stop)
			}
		}
	}
	if fc, isFence := n.(*ast.FencedCodeBlock); isFence && fc.Info != nil {
		merge(fc.Info.Segment.Start, fc.Info.Segment.Stop)
	}
	if txt, isText := n.(*ast.Text); isText {
		merge(txt.Segment.Start, txt.Segment.Stop)
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if cs, ce, ok := nodeSpan(c); ok {
			merge(cs, ce)
		}
	}

	return start, stop, start != -1
}

// blockKind maps a goldmark node to the block classification carried in
// command attributes.
func blockKind(n ast.Node, content string) blockdoc.BlockKind {
	switch n.Kind() {
	case ast.KindHeading:
		return blockdoc.KindHeading
	case ast.KindList:
		return blockdoc.KindList
	case ast.KindBlockquote:
		return blockdoc.KindBlockquote
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return blockdoc.KindCodeBlock
	case ast.KindThematicBreak:
		return blockdoc.KindThematicBreak
	case ast.KindHTMLBlock:
		return blockdoc.KindHTMLBlock
	case east.KindTable:
		return blockdoc.KindTable
	case ast.KindParagraph:
		if strings.HasPrefix(strings.TrimSpace(content), "$$") {
			return blockdoc.KindMath
		}
		return blockdoc.KindParagraph
	default:
		return blockdoc.KindRaw
	}
}

// blockLanguage returns the declared fence language, or a guess for
// unlabeled fences so downstream highlighters have something to work with.
func blockLanguage(n ast.Node, source []byte, lines []string, start, end int) string {
	fc, isFence := n.(*ast.FencedCodeBlock)
	if isFence {
		if lang := fc.Language(source); len(lang) > 0 {
			return string(lang)
		}
		if end-start >= 2 {
			inner := strings.Join(lines[start+1:end], "\n")
			return langdetect.Detect([]byte(inner))
		}
		return "text"
	}
	if n.Kind() == ast.KindCodeBlock {
		return langdetect.Detect([]byte(strings.Join(lines[start:end+1], "\n")))
	}
	return ""
}

// lineStarts returns the byte offset of each line start.
func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf returns the 0-based line containing the byte offset.
func lineOf(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option
	if flavor == FlavorGFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New(opts...)
}
