package assistant

import (
	"regexp"
	"strings"
)

// MaxSuggestions caps the number of suggestions kept from any response.
const MaxSuggestions = 3

// suggestionMarkers introduce a suggestion list. Matched case-insensitively
// at the start of a line.
var suggestionMarkers = []string{"try:", "consider:", "you could:", "suggestions:"}

var (
	// fencePattern matches a fenced block. The optional language tag only
	// counts when the opening delimiter is followed by a newline, so inline
	// fences like ```x = 1``` keep their whole body.
	fencePattern  = regexp.MustCompile("(?s)```(?:[\\w+#.-]*[ \\t]*\\r?\\n)?(.*?)```")
	bulletPattern = regexp.MustCompile(`^\s*(?:[-*+•]|\d+[.)])(?:\s+(.*))?$`)
)

// Extraction is the structured view of a free-form backend reply.
type Extraction struct {
	Prose       string
	Suggestions []string
	Code        string
}

// Extract pulls the first fenced code block and an optional suggestion list
// out of raw. Prose is raw with every fenced block removed, trimmed.
// Missing patterns produce zero values, never errors.
func Extract(raw string) Extraction {
	var out Extraction

	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		out.Code = trimFenceBody(m[1])
	}

	unfenced := fencePattern.ReplaceAllString(raw, "")
	out.Prose = strings.TrimSpace(unfenced)
	out.Suggestions = extractSuggestions(unfenced)

	return out
}

func trimFenceBody(body string) string {
	body = strings.TrimSuffix(body, "\n")
	body = strings.TrimSuffix(body, "\r")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return body
}

// extractSuggestions returns the items of the first marker-introduced list
// that yields at least one non-empty item.
func extractSuggestions(text string) []string {
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		if !isSuggestionMarker(lines[i]) {
			continue
		}

		var items []string
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		for ; j < len(lines); j++ {
			m := bulletPattern.FindStringSubmatch(strings.TrimRight(lines[j], "\r"))
			if m == nil {
				break
			}
			if item := strings.TrimSpace(m[1]); item != "" {
				items = append(items, item)
			}
		}

		if len(items) > 0 {
			if len(items) > MaxSuggestions {
				items = items[:MaxSuggestions]
			}
			return items
		}
	}

	return nil
}

func isSuggestionMarker(line string) bool {
	lowered := strings.ToLower(strings.TrimLeft(strings.TrimSpace(line), "#*_ "))
	for _, marker := range suggestionMarkers {
		if strings.HasPrefix(lowered, marker) {
			return true
		}
	}
	return false
}
