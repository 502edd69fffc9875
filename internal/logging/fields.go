// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"
	FieldAddr   = "addr"

	// Document fields.
	FieldRevision = "revision"
	FieldBlocks   = "blocks"
	FieldBlockID  = "block_id"
	FieldLines    = "lines"

	// Update fields.
	FieldCommands    = "commands"
	FieldKept        = "kept"
	FieldInserted    = "inserted"
	FieldRemoved     = "removed"
	FieldReplaced    = "replaced"
	FieldNeedsRender = "needs_render"

	// Configuration fields.
	FieldFlavor = "flavor"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
