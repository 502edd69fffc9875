package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

// contentPreviewLen caps how much block content is echoed per command line.
const contentPreviewLen = 48

// FormatCommand renders one mutation command as a single line.
func (s *Styles) FormatCommand(cmd blockdoc.Command) string {
	verb := s.commandStyle(cmd.Kind).Render(cmd.Kind.String())

	var parts []string
	parts = append(parts, verb)

	if cmd.Kind != blockdoc.CmdClear {
		parts = append(parts, s.BlockID.Render(fmt.Sprintf("#%d", cmd.BlockID)))
	}
	if cmd.Ref != 0 {
		switch cmd.Kind {
		case blockdoc.CmdInsertBefore:
			parts = append(parts, s.Dim.Render("before"), s.BlockID.Render(fmt.Sprintf("#%d", cmd.Ref)))
		case blockdoc.CmdReplace:
			parts = append(parts, s.Dim.Render("for"), s.BlockID.Render(fmt.Sprintf("#%d", cmd.Ref)))
		}
	}
	if cmd.Attrs != nil {
		loc := fmt.Sprintf("%s L%d", cmd.Attrs.Kind, cmd.Attrs.StartLine)
		if cmd.Attrs.LineCount > 1 {
			loc = fmt.Sprintf("%s L%d-%d", cmd.Attrs.Kind, cmd.Attrs.StartLine,
				cmd.Attrs.StartLine+cmd.Attrs.LineCount-1)
		}
		parts = append(parts, s.Location.Render("("+loc+")"))
	}
	if cmd.Payload != "" {
		parts = append(parts, s.Content.Render(preview(cmd.Payload)))
	}

	return strings.Join(parts, " ")
}

// FormatCommands renders a whole command list, one command per line.
func (s *Styles) FormatCommands(cmds []blockdoc.Command) string {
	if len(cmds) == 0 {
		return s.Dim.Render("no changes") + "\n"
	}
	var b strings.Builder
	for _, cmd := range cmds {
		b.WriteString(s.FormatCommand(cmd))
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *Styles) commandStyle(kind blockdoc.CommandKind) lipgloss.Style {
	switch kind {
	case blockdoc.CmdClear:
		return s.Clear
	case blockdoc.CmdAppend:
		return s.Append
	case blockdoc.CmdInsertBefore:
		return s.InsertBefore
	case blockdoc.CmdRemove:
		return s.Remove
	case blockdoc.CmdReplace:
		return s.Replace
	default:
		return s.UpdateAttrs
	}
}

func preview(content string) string {
	content = strings.ReplaceAll(content, "\n", "⏎")
	if len(content) > contentPreviewLen {
		content = content[:contentPreviewLen] + "…"
	}
	return "‹" + content + "›"
}
