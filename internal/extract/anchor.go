// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// maxQuoteWords caps the anchor quote at 25 whitespace-delimited tokens.
// The quote is the unit a human auditor re-checks against the source, so it
// must stay short enough to locate by eye.
const maxQuoteWords = 25

// Error codes recorded on unverifiable candidates (R2.3).
const (
	ErrEmptyQuote          = "empty_quote"
	ErrAnchorQuoteNotFound = "anchor_quote_not_found"
)

// Verification is the outcome of anchoring one candidate to its source text.
type Verification struct {
	// Verified reports whether the anchor quote occurs in the source.
	Verified bool

	// AnchorQuote is the truncated quote, returned even when unverified so
	// callers can decide what to do with the rejected candidate.
	AnchorQuote string

	// Errors lists error codes; empty for verified candidates.
	Errors []string
}

// LimitQuoteWords truncates input to its first max whitespace-delimited tokens.
func LimitQuoteWords(input string, max int) string {
	fields := strings.Fields(input)
	if len(fields) > max {
		fields = fields[:max]
	}
	return strings.Join(fields, " ")
}

// NormalizeForMatch collapses whitespace runs to single spaces and case-folds,
// the only transformations permitted before containment matching. Exact
// substring containment (not fuzzy matching) keeps the anchor auditable with
// zero ambiguity.
func NormalizeForMatch(input string) string {
	return strings.ToLower(strings.Join(strings.Fields(input), " "))
}

// QuoteExists reports whether quote occurs as a contiguous substring of
// haystack after normalization. An empty quote never matches.
func QuoteExists(haystack, quote string) bool {
	q := NormalizeForMatch(quote)
	if q == "" {
		return false
	}
	return strings.Contains(NormalizeForMatch(haystack), q)
}

// Verify anchors a candidate to its source text: the sentence is truncated
// to 25 words and the result must occur (whitespace/case-normalized) in the
// source (R2.1, R2.2). Verify is deterministic; re-running it on the same
// inputs yields the same quote and flag.
func Verify(candidate Candidate, sourceText string) Verification {
	quote := LimitQuoteWords(candidate.Sentence, maxQuoteWords)
	if quote == "" {
		return Verification{
			Verified:    false,
			AnchorQuote: "",
			Errors:      []string{ErrEmptyQuote},
		}
	}

	if !QuoteExists(sourceText, quote) {
		return Verification{
			Verified:    false,
			AnchorQuote: quote,
			Errors:      []string{ErrAnchorQuoteNotFound},
		}
	}

	return Verification{Verified: true, AnchorQuote: quote}
}
