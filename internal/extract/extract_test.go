package extract

import (
	"strings"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- candidates ---

func TestGenerateCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numeric sentence kept",
			text: "Blood loss averaged 250 ml across the series. The weather was nice.",
			want: []string{"Blood loss averaged 250 ml across the series."},
		},
		{
			name: "keyword sentence kept without digits",
			text: "In conclusion the approach remains viable for selected cases.",
			want: []string{"In conclusion the approach remains viable for selected cases."},
		},
		{
			name: "short spans dropped",
			text: "Good outcome. OK.",
			want: nil,
		},
		{
			name: "uninteresting prose dropped",
			text: "The hospital cafeteria serves lunch every weekday afternoon without fail.",
			want: nil,
		},
		{
			name: "order preserved",
			text: "Follow-up lasted 12 months for most. Complication profiles were acceptable overall.",
			want: []string{
				"Follow-up lasted 12 months for most.",
				"Complication profiles were acceptable overall.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCandidates(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d: %v", len(got), len(tt.want), got)
			}
			for i, c := range got {
				if c.Sentence != tt.want[i] {
					t.Errorf("candidate %d = %q, want %q", i, c.Sentence, tt.want[i])
				}
			}
		})
	}
}

func TestSplitSentencesKeepsTerminator(t *testing.T) {
	spans := splitSentences("First span here. Second span there! Third?")
	want := []string{"First span here.", "Second span there!", "Third?"}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d: %v", len(spans), len(want), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span %d = %q, want %q", i, spans[i], want[i])
		}
	}
}

// --- anchor verification ---

func TestVerifyContainment(t *testing.T) {
	source := "The cohort of 120 patients   showed\nsteady improvement over time."
	cand := Candidate{Sentence: "The cohort of 120 patients showed steady improvement over time."}

	v := Verify(cand, source)
	if !v.Verified {
		t.Fatalf("expected verified, errors: %v", v.Errors)
	}
	if !strings.Contains(NormalizeForMatch(source), NormalizeForMatch(v.AnchorQuote)) {
		t.Errorf("quote %q not contained in normalized source", v.AnchorQuote)
	}
}

func TestVerifyTruncatesQuote(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word"
	}
	sentence := strings.Join(words, " ")

	v := Verify(Candidate{Sentence: sentence}, sentence)
	if !v.Verified {
		t.Fatalf("expected verified, errors: %v", v.Errors)
	}
	if n := len(strings.Fields(v.AnchorQuote)); n != 25 {
		t.Errorf("quote has %d words, want 25", n)
	}
}

func TestVerifyNotFound(t *testing.T) {
	v := Verify(Candidate{Sentence: "This claim never appears."}, "Entirely unrelated source text.")
	if v.Verified {
		t.Fatal("expected unverified")
	}
	if v.AnchorQuote != "This claim never appears." {
		t.Errorf("quote = %q, want the truncated candidate", v.AnchorQuote)
	}
	if len(v.Errors) != 1 || v.Errors[0] != ErrAnchorQuoteNotFound {
		t.Errorf("errors = %v, want [%s]", v.Errors, ErrAnchorQuoteNotFound)
	}
}

func TestVerifyEmptyQuote(t *testing.T) {
	v := Verify(Candidate{Sentence: "   "}, "some text")
	if v.Verified || len(v.Errors) != 1 || v.Errors[0] != ErrEmptyQuote {
		t.Errorf("got %+v, want empty_quote failure", v)
	}
}

func TestVerifyDeterministic(t *testing.T) {
	cand := Candidate{Sentence: "Operative time decreased by 20 minutes."}
	source := "Operative time decreased by 20 minutes. Other text."
	first := Verify(cand, source)
	second := Verify(cand, source)
	if first.Verified != second.Verified || first.AnchorQuote != second.AnchorQuote {
		t.Errorf("verification not deterministic: %+v vs %+v", first, second)
	}
}

// --- classifier ---

func TestClassifyWaterfall(t *testing.T) {
	tests := []struct {
		sentence string
		want     types.ClaimType
	}{
		{"Postoperative complication rates fell sharply.", types.ClaimComplication},
		{"Adverse events were rare in both arms.", types.ClaimComplication},
		{"The anatomical corridor was preserved.", types.ClaimAnatomy},
		{"The surgical technique was refined over time.", types.ClaimTechnique},
		{"The patient cohort included 80 adults.", types.ClaimPopulation},
		{"The study protocol mandated blinding.", types.ClaimMethod},
		{"Outcomes improved at one year.", types.ClaimOutcome},
		{"The sky was clear that evening.", types.ClaimOther},
		// First matching rule wins over later ones.
		{"Surgical complications required anatomical revision.", types.ClaimComplication},
		{"The anatomical technique spared the nerve.", types.ClaimAnatomy},
	}
	for _, tt := range tests {
		if got := Classify(tt.sentence); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.sentence, got, tt.want)
		}
	}
}

// --- numbers ---

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		want     []types.NumberMention
	}{
		{
			name:     "percent and months",
			sentence: "A 30% reduction persisted after 6 months.",
			want: []types.NumberMention{
				{Value: "30", Unit: "%"},
				{Value: "6", Unit: "months"},
			},
		},
		{
			name:     "bare number has no unit",
			sentence: "We enrolled 42 participants.",
			want:     []types.NumberMention{{Value: "42"}},
		},
		{
			name:     "decimal with unit",
			sentence: "The lesion measured 3.5 cm at baseline.",
			want:     []types.NumberMention{{Value: "3.5", Unit: "cm"}},
		},
		{
			name:     "unit needs word boundary",
			sentence: "Code 5mgX is a label, not a dose.",
			want:     []types.NumberMention{{Value: "5"}},
		},
		{
			name:     "no numbers yields nil",
			sentence: "No quantities appear here.",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumbers(tt.sentence)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("got %v, want nil", got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("mention %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
