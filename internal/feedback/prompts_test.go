package feedback

import (
	"strings"
	"testing"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

func planObject(n int, typ string) map[string]any {
	qs := make([]any, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, map[string]any{
			"type":   typ,
			"text":   "question text",
			"intent": "intent",
			"guides": []any{"g1", "g2", "g3"},
		})
	}
	return map[string]any{"questions": qs}
}

func TestParsePlanHappyPath(t *testing.T) {
	plan, err := parsePlan(planObject(10, "technical"), "backend", 10, 42)
	if err != nil {
		t.Fatalf("parsePlan: %v", err)
	}
	if plan.Len() != 10 {
		t.Fatalf("Len = %d, want 10", plan.Len())
	}
	if plan.JobRole != "backend" || plan.Seed != 42 {
		t.Fatalf("plan metadata = %q/%d", plan.JobRole, plan.Seed)
	}
	for i, q := range plan.Questions {
		if q.Index != i {
			t.Fatalf("question %d has index %d", i, q.Index)
		}
	}
}

func TestParsePlanUnknownTypeFallsToSlot(t *testing.T) {
	plan, err := parsePlan(planObject(10, "gibberish"), "backend", 10, 1)
	if err != nil {
		t.Fatalf("parsePlan: %v", err)
	}
	for i, q := range plan.Questions {
		if want := domain.TypeForSlot(i, 10); q.Type != want {
			t.Fatalf("question %d type = %q, want %q", i, q.Type, want)
		}
	}
}

func TestParsePlanRejectsShortResponse(t *testing.T) {
	if _, err := parsePlan(planObject(7, "technical"), "backend", 10, 1); err == nil {
		t.Fatal("want error for 7 of 10 questions")
	}
	if _, err := parsePlan(map[string]any{}, "backend", 10, 1); err == nil {
		t.Fatal("want error for missing questions")
	}
}

func TestParseBatchRatingsPartial(t *testing.T) {
	got := parseBatchRatings(map[string]any{
		MetricClarity:        8.0,
		MetricStructure:      "not a number",
		MetricTechnicalDepth: 5,
	})
	if len(got) != 2 {
		t.Fatalf("parsed %d ratings, want 2", len(got))
	}
	if got[MetricClarity] != 8.0 || got[MetricTechnicalDepth] != 5.0 {
		t.Fatalf("ratings = %v", got)
	}
}

func TestParseNarrativeRejectsEmptyField(t *testing.T) {
	_, err := parseNarrative(map[string]any{
		"strengths":        "good",
		"areas_to_improve": "",
		"next_steps":       "practice",
	})
	if err == nil {
		t.Fatal("want error for empty narrative field")
	}
}

func TestTruncateRespectsRuneBoundary(t *testing.T) {
	s := strings.Repeat("한", 600)
	got := truncate(s, 500)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated string missing marker: %q", got[len(got)-10:])
	}
	if n := len([]rune(got)); n != 501 {
		t.Fatalf("kept %d runes, want 501", n)
	}
}

func TestTypeDistributionCoversAllTypes(t *testing.T) {
	d := typeDistribution(10)
	for _, want := range []string{"warm_up", "technical", "design", "troubleshoot", "wrap_up"} {
		if !strings.Contains(d, want) {
			t.Fatalf("distribution %q missing %q", d, want)
		}
	}
}
