// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// numberPattern matches a numeric literal optionally followed by a
// recognized unit token. Units are matched on a word boundary so "5 mg"
// and "5mg" capture the unit but "5 mgX" does not.
var numberPattern = regexp.MustCompile(`([-+]?\d+(?:\.\d+)?)\s*(%|mm\b|cm\b|ml\b|mg\b|kg\b|years?\b|days?\b|months?\b)?`)

// ParseNumbers scans a sentence for numeric literals with optional units,
// returning nil when none are found (absence, not an empty list) (R5.1).
func ParseNumbers(sentence string) []types.NumberMention {
	matches := numberPattern.FindAllStringSubmatch(sentence, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]types.NumberMention, 0, len(matches))
	for _, m := range matches {
		out = append(out, types.NumberMention{Value: m[1], Unit: m[2]})
	}
	return out
}
