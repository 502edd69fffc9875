// Package blockdoc implements an incremental, block-oriented document model.
// It re-synchronizes a keyed sequence of rendered blocks with a changing
// source text by emitting the minimal set of structural mutation commands,
// while preserving cached render payloads for blocks whose content survived
// the update.
package blockdoc

// BlockID is an opaque, process-unique block identifier.
// IDs are minted from a monotonic per-document counter and are stable for
// the lifetime of a block instance: a block matched across an update with
// unchanged content hash keeps its ID, everything else gets a fresh one.
type BlockID int64

// BlockKind classifies the block-level construct a block was split from.
// It is carried opaquely in command attributes for downstream renderers and
// plays no role in matching.
type BlockKind uint8

// Block kinds produced by the bundled splitter.
const (
	KindParagraph BlockKind = iota
	KindHeading
	KindList
	KindBlockquote
	KindCodeBlock
	KindThematicBreak
	KindHTMLBlock
	KindTable
	KindMath
	KindRaw
)

// String returns the lowercase name of the block kind.
func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindBlockquote:
		return "blockquote"
	case KindCodeBlock:
		return "code"
	case KindThematicBreak:
		return "thematicbreak"
	case KindHTMLBlock:
		return "html"
	case KindTable:
		return "table"
	case KindMath:
		return "math"
	default:
		return "raw"
	}
}

// Payload is the externally computed render output cached on a block,
// e.g. rendered HTML or a diagram image reference. The core never inspects
// it; it only stores it and carries it through structural commands.
type Payload struct {
	// Data is the opaque rendered output.
	Data string

	// Pending marks a payload that is itself an unresolved async
	// placeholder. Pending blocks are reported by BlocksNeedingRender.
	Pending bool
}

// Block is the unit of identity and render caching.
type Block struct {
	// ID is the stable surrogate identity of this block instance.
	ID BlockID

	// Hash is the content-derived equality key used for matching.
	Hash string

	// StartLine is the 1-based source line the block starts on.
	StartLine int

	// LineCount is the number of content lines (no trailing blank padding).
	LineCount int

	// Content is the raw source text owned by this block.
	Content string

	// Kind classifies the block for renderers.
	Kind BlockKind

	// Language is the detected or declared code-fence language, if any.
	Language string

	// Payload is the cached render output, nil until a renderer sets it.
	Payload *Payload
}

// EndLine returns the 1-based line just past the block's content,
// i.e. StartLine + LineCount.
func (b *Block) EndLine() int {
	return b.StartLine + b.LineCount
}

// ContainsLine reports whether the (possibly fractional) source line falls
// inside the block's [StartLine, StartLine+LineCount) range.
func (b *Block) ContainsLine(line float64) bool {
	return line >= float64(b.StartLine) && line < float64(b.StartLine+b.LineCount)
}

// NeedsRender reports whether the block has no payload yet or its payload
// is still a pending placeholder.
func (b *Block) NeedsRender() bool {
	return b.Payload == nil || b.Payload.Pending
}

// Attrs is the attribute bag mirrored onto rendered nodes by structural
// commands, so the render target can be re-queried by line or identity
// later (e.g. via DOM data-attributes).
type Attrs struct {
	BlockID   BlockID `json:"blockId"`
	BlockHash string  `json:"blockHash"`
	StartLine int     `json:"startLine"`
	LineCount int     `json:"lineCount"`
	Kind      string  `json:"kind"`
	Language  string  `json:"language,omitempty"`
}

// attrs builds the command attribute bag for a block.
func (b *Block) attrs() Attrs {
	return Attrs{
		BlockID:   b.ID,
		BlockHash: b.Hash,
		StartLine: b.StartLine,
		LineCount: b.LineCount,
		Kind:      b.Kind.String(),
		Language:  b.Language,
	}
}

// RawBlock is a freshly split block before identity assignment: the shape
// the Splitter produces.
type RawBlock struct {
	// Content is the block's source text.
	Content string

	// StartLine is the 1-based line the block starts on.
	StartLine int

	// Kind classifies the block-level construct.
	Kind BlockKind

	// Language is the declared or guessed code-fence language, if any.
	Language string
}

// Splitter decomposes normalized source text into an ordered sequence of
// raw blocks. Implementations must be deterministic and total: malformed
// input yields zero blocks, never an error.
type Splitter interface {
	Split(text string) []RawBlock
}

// SplitFunc adapts a plain function to the Splitter interface.
type SplitFunc func(text string) []RawBlock

// Split calls f(text).
func (f SplitFunc) Split(text string) []RawBlock {
	return f(text)
}
