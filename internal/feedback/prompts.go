package feedback

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

// Prompt and schema builders shared by both provider implementations so the
// backends stay interchangeable output-for-output.

func planSystemPrompt(role string, n int, seed int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior interviewer preparing a %d-question mock interview for the role %q.\n", n, role)
	b.WriteString("Rules:\n")
	b.WriteString("- Ask only questions relevant to this role. Never leak technical topics from unrelated roles.\n")
	fmt.Fprintf(&b, "- Follow this type distribution by position: %s.\n", typeDistribution(n))
	b.WriteString("- For every question provide a one-sentence evaluation intent and exactly three short answer guides.\n")
	fmt.Fprintf(&b, "- Variation seed %d: vary wording and topics between runs; do not repeat a canned set.\n", seed)
	return b.String()
}

func typeDistribution(n int) string {
	counts := map[domain.QuestionType]int{}
	order := []domain.QuestionType{}
	for i := 0; i < n; i++ {
		t := domain.TypeForSlot(i, n)
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[t], t))
	}
	return strings.Join(parts, ", then ")
}

func planUserPrompt(role, profileSnapshot string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate the %d questions for a %q candidate.\n", n, role)
	if s := strings.TrimSpace(profileSnapshot); s != "" {
		fmt.Fprintf(&b, "Candidate profile snapshot (treat as background, quote nothing from it):\n%s\n", truncate(s, 4000))
	}
	return b.String()
}

func planSchema(n int) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": n,
				"maxItems": n,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":   map[string]any{"type": "string"},
						"text":   map[string]any{"type": "string"},
						"intent": map[string]any{"type": "string"},
						"guides": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 3,
							"maxItems": 3,
						},
					},
					"required":             []string{"type", "text", "intent", "guides"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}
}

func parsePlan(obj map[string]any, role string, n int, seed int64) (domain.Plan, error) {
	plan := domain.Plan{JobRole: role, Seed: seed}
	rawQs, ok := obj["questions"].([]any)
	if !ok || len(rawQs) == 0 {
		return plan, fmt.Errorf("plan response missing questions")
	}
	for i, rawQ := range rawQs {
		if i >= n {
			break
		}
		m, ok := rawQ.(map[string]any)
		if !ok {
			return plan, fmt.Errorf("plan question %d is not an object", i)
		}
		q := domain.Question{
			Index:  i,
			Type:   normalizeType(stringField(m, "type"), i, n),
			Text:   strings.TrimSpace(stringField(m, "text")),
			Intent: strings.TrimSpace(stringField(m, "intent")),
			Guides: stringSlice(m["guides"]),
		}
		if q.Text == "" {
			return plan, fmt.Errorf("plan question %d has empty text", i)
		}
		plan.Questions = append(plan.Questions, q)
	}
	if len(plan.Questions) != n {
		return plan, fmt.Errorf("plan has %d questions, want %d", len(plan.Questions), n)
	}
	return plan, nil
}

func normalizeType(raw string, index, total int) domain.QuestionType {
	switch domain.QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.QuestionWarmUp:
		return domain.QuestionWarmUp
	case domain.QuestionTechnical:
		return domain.QuestionTechnical
	case domain.QuestionDesign:
		return domain.QuestionDesign
	case domain.QuestionTroubleshoot:
		return domain.QuestionTroubleshoot
	case domain.QuestionWrapUp:
		return domain.QuestionWrapUp
	default:
		return domain.TypeForSlot(index, total)
	}
}

func turnInstructions(plan domain.Plan, index int) string {
	q, _ := plan.QuestionAt(index)
	var b strings.Builder
	fmt.Fprintf(&b, "You are coaching a %q mock interview. The candidate just answered question %d of %d.\n", plan.JobRole, index+1, plan.Len())
	fmt.Fprintf(&b, "Question (%s): %s\n", q.Type, q.Text)
	if q.Intent != "" {
		fmt.Fprintf(&b, "Evaluation intent: %s\n", q.Intent)
	}
	b.WriteString("Return one specific, actionable coaching tip (2-3 sentences) and a rating from 0 to 10.")
	return b.String()
}

func turnSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coaching_tip": map[string]any{"type": "string"},
			"rating":       map[string]any{"type": "number"},
		},
		"required":             []string{"coaching_tip", "rating"},
		"additionalProperties": false,
	}
}

func parseTurn(obj map[string]any) (string, float64, error) {
	tip := strings.TrimSpace(stringField(obj, "coaching_tip"))
	if tip == "" {
		return "", 0, fmt.Errorf("turn response missing coaching_tip")
	}
	return tip, numberField(obj, "rating"), nil
}

func intentSystemPrompt(role string) string {
	return fmt.Sprintf("You design interview rubrics for the role %q. For the given question, produce a one-sentence evaluation intent and exactly three short answer guides.", role)
}

func intentSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intent": map[string]any{"type": "string"},
			"guides": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 3,
				"maxItems": 3,
			},
		},
		"required":             []string{"intent", "guides"},
		"additionalProperties": false,
	}
}

func batchUserPrompt(summaries []AnswerSummary, role string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rate this %q mock-interview performance. For each of the five skills give a 0-10 rating:\n", role)
	for _, key := range MetricKeys {
		fmt.Fprintf(&b, "- %s\n", key)
	}
	b.WriteString("\nTranscript summary:\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "Q%d (%s): %s\nA: %s\n\n", s.Index+1, s.QuestionType, s.QuestionText, truncate(s.Transcript, transcriptSummaryLimit))
	}
	return b.String()
}

// transcriptSummaryLimit caps each answer inside the batch summary.
const transcriptSummaryLimit = 500

func batchSchema() map[string]any {
	props := map[string]any{}
	for _, key := range MetricKeys {
		props[key] = map[string]any{"type": "number"}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             append([]string{}, MetricKeys...),
		"additionalProperties": false,
	}
}

// parseBatchRatings pulls whatever subset of the five ratings the model
// produced; the evaluation service fills gaps with its documented default.
func parseBatchRatings(obj map[string]any) map[string]float64 {
	out := map[string]float64{}
	for _, key := range MetricKeys {
		if v, ok := obj[key]; ok {
			if f, ok := toFloat(v); ok {
				out[key] = f
			}
		}
	}
	return out
}

func reportInstructions() string {
	return "You write the closing report of a mock interview. Treat the provided facts as ground truth: do not praise skills with low scores and do not contradict the numbers. Write three parts: strengths, areas to improve, next steps. Each part is one short paragraph addressed to the candidate."
}

func reportUserPrompt(facts ReportFacts) string {
	raw, err := json.Marshal(facts)
	if err != nil {
		return "Facts unavailable."
	}
	return "Facts:\n" + string(raw)
}

func reportSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"strengths":        map[string]any{"type": "string"},
			"areas_to_improve": map[string]any{"type": "string"},
			"next_steps":       map[string]any{"type": "string"},
		},
		"required":             []string{"strengths", "areas_to_improve", "next_steps"},
		"additionalProperties": false,
	}
}

func parseNarrative(obj map[string]any) (Narrative, error) {
	n := Narrative{
		Strengths:      strings.TrimSpace(stringField(obj, "strengths")),
		AreasToImprove: strings.TrimSpace(stringField(obj, "areas_to_improve")),
		NextSteps:      strings.TrimSpace(stringField(obj, "next_steps")),
	}
	if n.Strengths == "" || n.AreasToImprove == "" || n.NextSteps == "" {
		return n, fmt.Errorf("report response incomplete")
	}
	return n, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func numberField(m map[string]any, key string) float64 {
	if f, ok := toFloat(m[key]); ok {
		return f
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
