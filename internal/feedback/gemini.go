package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gemini"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// GeminiProvider has no server-side conversation primitive, so anchors are
// locally minted IDs keyed into a bounded in-memory history cache. Losing a
// cache entry (restart, eviction) degrades context, never correctness.
type GeminiProvider struct {
	client gemini.Client
	cache  *AnchorCache
	curve  ScoreCurveParams
	log    *logger.Logger
}

func NewGeminiProvider(client gemini.Client, cache *AnchorCache, curve ScoreCurveParams, log *logger.Logger) *GeminiProvider {
	if cache == nil {
		cache = NewAnchorCache(0, 0)
	}
	return &GeminiProvider{client: client, cache: cache, curve: curve, log: log.With("provider", "gemini")}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Greeting(displayName string) string {
	return DefaultGreeting(displayName)
}

func (p *GeminiProvider) GeneratePlan(ctx context.Context, role string, profileSnapshot string, n int, seed int64) (domain.Plan, error) {
	system := planSystemPrompt(role, n, seed) + jsonSuffix(planSchema(n))
	obj, err := p.client.GenerateJSON(ctx, system, nil, planUserPrompt(role, profileSnapshot, n))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("gemini plan: %w", err)
	}
	plan, err := parsePlan(obj, role, n, seed)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("gemini plan: %w", err)
	}
	return plan, nil
}

// chain resolves the prior anchor to its cached history and mints the anchor
// for this call. An unknown or empty prior anchor starts a fresh context.
func (p *GeminiProvider) chain(priorAnchor string) (history []gemini.Message, anchor string) {
	anchor = priorAnchor
	if anchor == "" {
		anchor = uuid.NewString()
	}
	for _, ex := range p.cache.Get(anchor) {
		history = append(history, gemini.Message{Role: ex.Role, Text: ex.Text})
	}
	return history, anchor
}

func (p *GeminiProvider) NextTurnFeedback(ctx context.Context, plan domain.Plan, index int, transcript string, priorAnchor string) (TurnFeedback, error) {
	history, anchor := p.chain(priorAnchor)
	system := turnInstructions(plan, index) + jsonSuffix(turnSchema())
	user := "Candidate answer:\n" + transcript
	obj, err := p.client.GenerateJSON(ctx, system, history, user)
	if err != nil {
		return TurnFeedback{}, fmt.Errorf("gemini turn feedback: %w", err)
	}
	tip, rating, err := parseTurn(obj)
	if err != nil {
		return TurnFeedback{}, fmt.Errorf("gemini turn feedback: %w", err)
	}
	p.cache.Append(anchor, user, tip)
	return TurnFeedback{CoachingTip: tip, RawRating: rating, Anchor: anchor}, nil
}

func (p *GeminiProvider) QuestionIntentAndGuides(ctx context.Context, qType domain.QuestionType, text string, role string) (string, []string, error) {
	system := intentSystemPrompt(role) + jsonSuffix(intentSchema())
	obj, err := p.client.GenerateJSON(ctx, system, nil, fmt.Sprintf("Question (%s): %s", qType, text))
	if err != nil {
		return "", nil, fmt.Errorf("gemini rubric: %w", err)
	}
	intent := stringField(obj, "intent")
	guides := stringSlice(obj["guides"])
	if intent == "" || len(guides) == 0 {
		return "", nil, fmt.Errorf("gemini rubric: empty response")
	}
	return intent, guides, nil
}

func (p *GeminiProvider) BatchEvaluate(ctx context.Context, summaries []AnswerSummary, role string, priorAnchor string) (BatchResult, error) {
	history, anchor := p.chain(priorAnchor)
	system := "You are scoring a completed mock interview. Rate each skill from 0 to 10 based only on the answers given." + jsonSuffix(batchSchema())
	user := batchUserPrompt(summaries, role)
	obj, err := p.client.GenerateJSON(ctx, system, history, user)
	if err != nil {
		return BatchResult{}, fmt.Errorf("gemini batch evaluate: %w", err)
	}
	scores := map[string]float64{}
	for key, raw := range parseBatchRatings(obj) {
		scores[key] = p.curve.Map(raw)
	}
	p.cache.Append(anchor, "Score the interview.", "Scores delivered.")
	return BatchResult{Scores: scores, Anchor: anchor}, nil
}

func (p *GeminiProvider) FinalizeReport(ctx context.Context, facts ReportFacts, priorAnchor string) (Narrative, error) {
	history, anchor := p.chain(priorAnchor)
	system := reportInstructions() + jsonSuffix(reportSchema())
	obj, err := p.client.GenerateJSON(ctx, system, history, reportUserPrompt(facts))
	if err != nil {
		return Narrative{}, fmt.Errorf("gemini report: %w", err)
	}
	n, err := parseNarrative(obj)
	if err != nil {
		return Narrative{}, fmt.Errorf("gemini report: %w", err)
	}
	p.cache.Drop(anchor)
	return n, nil
}

// jsonSuffix appends the schema to the system prompt since the API enforces
// JSON output but not a specific shape.
func jsonSuffix(schema map[string]any) string {
	if schema == nil {
		return "\nRespond with a single JSON object."
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return "\nRespond with a single JSON object."
	}
	return "\nRespond with a single JSON object matching this schema:\n" + string(raw)
}

var _ Provider = (*GeminiProvider)(nil)
