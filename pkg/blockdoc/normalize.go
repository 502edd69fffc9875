package blockdoc

import "strings"

// Normalize applies the deterministic text-level rewrites performed before
// splitting:
//
//   - strips a leading UTF-8 byte order mark
//   - canonicalizes CRLF and lone CR line endings to LF
//   - rewrites single-line display-math fences ("$$ x $$") into the
//     canonical multi-line form so they split as standalone math blocks
//
// Normalize is pure: equal input always yields equal output.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")

	if strings.ContainsRune(text, '\r') {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}

	if !strings.Contains(text, "$$") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if inner, ok := singleLineMath(line); ok {
			out = append(out, "$$", inner, "$$")
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// singleLineMath reports whether line is a one-line display-math fence
// ("$$ expr $$" with non-empty expr) and returns the inner expression.
func singleLineMath(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 5 {
		return "", false
	}
	if !strings.HasPrefix(trimmed, "$$") || !strings.HasSuffix(trimmed, "$$") {
		return "", false
	}
	inner := strings.TrimSpace(trimmed[2 : len(trimmed)-2])
	if inner == "" || strings.Contains(inner, "$$") {
		return "", false
	}
	return inner, true
}
