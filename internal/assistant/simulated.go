package assistant

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// FlavorPicker decides whether to prepend one of a profile's flavor lines to
// simulated prose. It returns "" to prepend nothing.
type FlavorPicker func(lines []string) string

// NoFlavor never prepends a flavor line.
func NoFlavor(lines []string) string { return "" }

// FirstFlavor always prepends the first flavor line.
func FirstFlavor(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// RandomFlavor prepends a random flavor line with the given probability.
// A nil src uses the global generator. The picker is safe for concurrent use
// even though src is not.
func RandomFlavor(chance float64, src *rand.Rand) FlavorPicker {
	var mu sync.Mutex
	return func(lines []string) string {
		if len(lines) == 0 {
			return ""
		}
		if src == nil {
			if rand.Float64() >= chance {
				return ""
			}
			return lines[rand.IntN(len(lines))]
		}

		mu.Lock()
		defer mu.Unlock()
		if src.Float64() >= chance {
			return ""
		}
		return lines[src.IntN(len(lines))]
	}
}

// selectRule picks the first rule whose keywords occur in the utterance,
// or the profile's fallback.
func selectRule(p Profile, utterance string) Rule {
	lowered := strings.ToLower(utterance)
	for _, r := range p.Rules {
		if r.Matches(lowered) {
			return r
		}
	}
	return p.Fallback
}

// simulate produces the rule-based response. It is total: every profile has
// a fallback with content, so it always returns a usable Response.
func simulate(p Profile, utterance string, pick FlavorPicker) Response {
	rule := selectRule(p, utterance)

	content := rule.Content
	if pick != nil {
		if line := strings.TrimSpace(pick(p.Flavor)); line != "" {
			content = line + " " + content
		}
	}

	resp := Response{
		Content: content,
		Code:    rule.Code,
		Source:  SourceSimulated,
	}
	if len(rule.Suggestions) > 0 {
		n := min(len(rule.Suggestions), MaxSuggestions)
		resp.Suggestions = append([]string(nil), rule.Suggestions[:n]...)
	}
	return resp
}

// pause emulates backend latency. It returns early when ctx is done.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
