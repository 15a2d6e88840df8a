package feedback

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/openai"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// OpenAIProvider chains calls through server-side conversations: the anchor
// returned from each operation is the conversation ID, so later calls see the
// full interview context without the caller replaying transcripts.
type OpenAIProvider struct {
	client openai.Client
	curve  ScoreCurveParams
	log    *logger.Logger
}

func NewOpenAIProvider(client openai.Client, curve ScoreCurveParams, log *logger.Logger) *OpenAIProvider {
	return &OpenAIProvider{client: client, curve: curve, log: log.With("provider", "openai")}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Greeting(displayName string) string {
	return DefaultGreeting(displayName)
}

func (p *OpenAIProvider) GeneratePlan(ctx context.Context, role string, profileSnapshot string, n int, seed int64) (domain.Plan, error) {
	obj, err := p.client.GenerateJSON(ctx,
		planSystemPrompt(role, n, seed),
		planUserPrompt(role, profileSnapshot, n),
		"interview_plan", planSchema(n))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("openai plan: %w", err)
	}
	plan, err := parsePlan(obj, role, n, seed)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("openai plan: %w", err)
	}
	return plan, nil
}

// anchorFor lazily creates the conversation on the first chained call of a
// session. priorAnchor == "" means no conversation exists yet.
func (p *OpenAIProvider) anchorFor(ctx context.Context, priorAnchor string) (string, error) {
	if priorAnchor != "" {
		return priorAnchor, nil
	}
	id, err := p.client.CreateConversation(ctx)
	if err != nil {
		return "", fmt.Errorf("openai conversation: %w", err)
	}
	return id, nil
}

func (p *OpenAIProvider) NextTurnFeedback(ctx context.Context, plan domain.Plan, index int, transcript string, priorAnchor string) (TurnFeedback, error) {
	anchor, err := p.anchorFor(ctx, priorAnchor)
	if err != nil {
		return TurnFeedback{}, err
	}
	obj, err := p.client.GenerateJSONInConversation(ctx, anchor,
		turnInstructions(plan, index),
		"Candidate answer:\n"+transcript,
		"turn_feedback", turnSchema())
	if err != nil {
		return TurnFeedback{}, fmt.Errorf("openai turn feedback: %w", err)
	}
	tip, rating, err := parseTurn(obj)
	if err != nil {
		return TurnFeedback{}, fmt.Errorf("openai turn feedback: %w", err)
	}
	return TurnFeedback{CoachingTip: tip, RawRating: rating, Anchor: anchor}, nil
}

func (p *OpenAIProvider) QuestionIntentAndGuides(ctx context.Context, qType domain.QuestionType, text string, role string) (string, []string, error) {
	obj, err := p.client.GenerateJSON(ctx,
		intentSystemPrompt(role),
		fmt.Sprintf("Question (%s): %s", qType, text),
		"question_rubric", intentSchema())
	if err != nil {
		return "", nil, fmt.Errorf("openai rubric: %w", err)
	}
	intent := stringField(obj, "intent")
	guides := stringSlice(obj["guides"])
	if intent == "" || len(guides) == 0 {
		return "", nil, fmt.Errorf("openai rubric: empty response")
	}
	return intent, guides, nil
}

func (p *OpenAIProvider) BatchEvaluate(ctx context.Context, summaries []AnswerSummary, role string, priorAnchor string) (BatchResult, error) {
	anchor, err := p.anchorFor(ctx, priorAnchor)
	if err != nil {
		return BatchResult{}, err
	}
	obj, err := p.client.GenerateJSONInConversation(ctx, anchor,
		"You are scoring a completed mock interview. Rate each skill from 0 to 10 based only on the answers given.",
		batchUserPrompt(summaries, role),
		"batch_scores", batchSchema())
	if err != nil {
		return BatchResult{}, fmt.Errorf("openai batch evaluate: %w", err)
	}
	scores := map[string]float64{}
	for key, raw := range parseBatchRatings(obj) {
		scores[key] = p.curve.Map(raw)
	}
	return BatchResult{Scores: scores, Anchor: anchor}, nil
}

func (p *OpenAIProvider) FinalizeReport(ctx context.Context, facts ReportFacts, priorAnchor string) (Narrative, error) {
	anchor, err := p.anchorFor(ctx, priorAnchor)
	if err != nil {
		return Narrative{}, err
	}
	obj, err := p.client.GenerateJSONInConversation(ctx, anchor,
		reportInstructions(),
		reportUserPrompt(facts),
		"final_report", reportSchema())
	if err != nil {
		return Narrative{}, fmt.Errorf("openai report: %w", err)
	}
	n, err := parseNarrative(obj)
	if err != nil {
		return Narrative{}, fmt.Errorf("openai report: %w", err)
	}
	return n, nil
}

var _ Provider = (*OpenAIProvider)(nil)

// small helper so plan seeds can be generated in one place
func RandomSeed() int64 { return rand.Int63() }
