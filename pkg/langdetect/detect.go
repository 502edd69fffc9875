// Package langdetect guesses the language of unlabeled code fences so the
// guess can be mirrored onto rendered blocks for external highlighters.
// It wraps go-enry with a few fast structural checks in front of the
// classifier.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const langText = "text"

// classifierCandidates bounds the enry classifier to languages that
// commonly appear in Markdown code fences.
//
//nolint:gochecknoglobals // static candidate list shared across calls
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Dockerfile",
}

// Detect returns a lowercase language identifier for code content, or
// "text" when nothing can be said with confidence.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return langText
	}

	// Shebangs are the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if lang := detectByStructure(content); lang != "" {
		return lang
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return langText
}

// detectByStructure applies cheap, high-precision checks that beat the
// statistical classifier on short snippets.
func detectByStructure(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	text := string(content)

	switch {
	case bytes.HasPrefix(trimmed, []byte("package ")):
		return "go"
	case bytes.HasPrefix(trimmed, []byte("{")) && bytes.Contains(trimmed, []byte(`":`)):
		return "json"
	case bytes.HasPrefix(trimmed, []byte("<!")) || bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<html")):
		return "html"
	case bytes.HasPrefix(trimmed, []byte("FROM ")) && bytes.Contains(content, []byte("RUN ")):
		return "dockerfile"
	case strings.Contains(text, "def ") && strings.Contains(text, "):"):
		return "python"
	case hasSQLVerb(text):
		return "sql"
	}
	return ""
}

func hasSQLVerb(text string) bool {
	upper := strings.ToUpper(strings.TrimSpace(text))
	for _, verb := range []string{"SELECT ", "INSERT INTO ", "CREATE TABLE ", "UPDATE ", "DELETE FROM "} {
		if strings.HasPrefix(upper, verb) {
			return true
		}
	}
	return false
}

// normalize maps enry's display names onto the lowercase identifiers used
// in Markdown fence info strings.
func normalize(lang string) string {
	switch lang {
	case "":
		return langText
	case "Shell":
		return "bash"
	case "C++":
		return "cpp"
	default:
		return strings.ToLower(lang)
	}
}
