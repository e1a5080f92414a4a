// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns document text into verified evidence ledger rows:
// candidate sentences are anchored to an exact source quote, classified, and
// scanned for numeric mentions.
// Implements: prd002-extraction (R1-R6);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import "strings"

// minCandidateLen is the minimum span length (exclusive) for a candidate.
const minCandidateLen = 24

// interestKeywords admit sentences without digits. Evidentially useful
// sentences in biomedical text skew toward quantitative or outcome-bearing
// language; this filter is intentionally permissive and feeds the verifier
// for rejection.
var interestKeywords = []string{
	"conclusion",
	"outcome",
	"improve",
	"significant",
	"complication",
	"anatom",
	"operative",
}

// Candidate is a transient span of source text considered for evidencing.
// It is consumed immediately by Verify and never persisted.
type Candidate struct {
	// Sentence is the trimmed span text.
	Sentence string

	// HasNumber reports whether the span contains a digit.
	HasNumber bool
}

// GenerateCandidates splits text into sentence-like spans and filters to the
// evidentially interesting ones, in appearance order (R1.1, R1.2). A span
// survives if it is longer than 24 characters and either contains a digit or
// mentions an interest keyword.
func GenerateCandidates(text string) []Candidate {
	var out []Candidate
	for _, span := range splitSentences(text) {
		span = strings.TrimSpace(span)
		if len(span) <= minCandidateLen {
			continue
		}
		hasNumber := containsDigit(span)
		if !hasNumber && !mentionsKeyword(span) {
			continue
		}
		out = append(out, Candidate{Sentence: span, HasNumber: hasNumber})
	}
	return out
}

// splitSentences breaks text at boundaries where a sentence terminator
// (., !, ?) is followed by whitespace. The terminator stays with the
// preceding span.
func splitSentences(text string) []string {
	var spans []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if !isTerminator(runes[i]) || !isSpace(runes[i+1]) {
			continue
		}
		spans = append(spans, string(runes[start:i+1]))
		// Skip the whitespace run following the terminator.
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		spans = append(spans, string(runes[start:]))
	}
	return spans
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func mentionsKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range interestKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
