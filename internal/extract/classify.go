// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// classifyRules is the keyword waterfall, checked in order; the first
// matching rule wins (R3.1). Pure data, never mutated.
var classifyRules = []struct {
	keywords []string
	claim    types.ClaimType
}{
	{[]string{"complication", "adverse"}, types.ClaimComplication},
	{[]string{"anatom"}, types.ClaimAnatomy},
	{[]string{"technique", "operative", "surgical"}, types.ClaimTechnique},
	{[]string{"cohort", "patient", "population"}, types.ClaimPopulation},
	{[]string{"method", "protocol"}, types.ClaimMethod},
	{[]string{"outcome", "improved", "reduced"}, types.ClaimOutcome},
}

// Classify assigns a coarse claim-type tag to a sentence by case-folded
// keyword priority, defaulting to Other.
func Classify(sentence string) types.ClaimType {
	lower := strings.ToLower(sentence)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.claim
			}
		}
	}
	return types.ClaimOther
}
