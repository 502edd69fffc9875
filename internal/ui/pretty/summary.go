package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

// FormatCountersOneLine formats update counters as a single line.
// Example: "3 kept, 1 inserted, 1 removed, 2 replaced".
func (s *Styles) FormatCountersOneLine(counters blockdoc.Counters) string {
	total := counters.Inserted + counters.Removed + counters.Replaced
	if total == 0 {
		return s.Success.Render("No structural changes") +
			s.Dim.Render(fmt.Sprintf(" (%d blocks kept)", counters.Kept)) + "\n"
	}

	parts := []string{
		s.Dim.Render(fmt.Sprintf("%d kept", counters.Kept)),
	}
	if counters.Inserted > 0 {
		parts = append(parts, s.Append.Render(fmt.Sprintf("%d inserted", counters.Inserted)))
	}
	if counters.Removed > 0 {
		parts = append(parts, s.Remove.Render(fmt.Sprintf("%d removed", counters.Removed)))
	}
	if counters.Replaced > 0 {
		parts = append(parts, s.Replace.Render(fmt.Sprintf("%d replaced", counters.Replaced)))
	}
	return strings.Join(parts, ", ") + "\n"
}
