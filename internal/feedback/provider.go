// Package feedback is the pluggable AI integration layer: one capability
// interface, interchangeable backends selected by configuration, and the
// failover policy shared by every call site.
package feedback

import (
	"context"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

// Metric keys produced by BatchEvaluate. Every evaluation result contains
// exactly these five keys.
const (
	MetricClarity           = "clarity"
	MetricStructure         = "structure"
	MetricTechnicalDepth    = "technical_depth"
	MetricTradeoffReasoning = "tradeoff_reasoning"
	MetricRootCauseAnalysis = "root_cause_analysis"
)

// MetricKeys is the fixed order used for prompts and reports.
var MetricKeys = []string{
	MetricClarity,
	MetricStructure,
	MetricTechnicalDepth,
	MetricTradeoffReasoning,
	MetricRootCauseAnalysis,
}

// TurnFeedback is the per-turn coaching result. Anchor carries the
// provider-side conversational context id for the next chained call; an
// empty anchor means the provider could not establish context this turn.
type TurnFeedback struct {
	CoachingTip string
	RawRating   float64 // provider-native 0-10 rating for this answer
	Anchor      string
}

// AnswerSummary is the truncated transcript view fed to batch evaluation.
type AnswerSummary struct {
	Index        int
	QuestionType domain.QuestionType
	QuestionText string
	Transcript   string
	CoachingTip  string
}

// BatchResult carries the five sub-scores on the stored 0-100 scale plus
// the anchor the report call should chain to.
type BatchResult struct {
	Scores map[string]float64
	Anchor string
}

// ReportFacts is the ground-truth bundle the narrative must not contradict.
type ReportFacts struct {
	JobRole       string             `json:"job_role"`
	AnsweredCount int                `json:"answered_count"`
	OverallScore  float64            `json:"overall_score"`
	Subscores     map[string]float64 `json:"subscores"`
	TopMetrics    []string           `json:"top_metrics"`    // two highest keys
	BottomMetrics []string           `json:"bottom_metrics"` // two lowest keys
	Turns         []ReportTurn       `json:"turns"`
}

type ReportTurn struct {
	Index       int    `json:"index"`
	Question    string `json:"question"`
	Excerpt     string `json:"excerpt"` // transcript truncated to 220 chars
	CoachingTip string `json:"coaching_tip"`
}

type Narrative struct {
	Strengths      string
	AreasToImprove string
	NextSteps      string
}

// Provider is the capability interface over an AI backend. Implementations
// are selected by configuration; no call site depends on which one is
// active. Every context-dependent operation accepts the anchor returned by
// the previous call for the same session, and anchor loss must only degrade
// context quality, never fail the call.
type Provider interface {
	Name() string

	// Greeting is a deterministic template; routed through the interface
	// only so each backend keeps its own tone.
	Greeting(displayName string) string

	GeneratePlan(ctx context.Context, role string, profileSnapshot string, n int, seed int64) (domain.Plan, error)

	NextTurnFeedback(ctx context.Context, plan domain.Plan, index int, transcript string, priorAnchor string) (TurnFeedback, error)

	// QuestionIntentAndGuides enriches a question the plan step failed to.
	QuestionIntentAndGuides(ctx context.Context, qType domain.QuestionType, text string, role string) (intent string, guides []string, err error)

	BatchEvaluate(ctx context.Context, summaries []AnswerSummary, role string, priorAnchor string) (BatchResult, error)

	FinalizeReport(ctx context.Context, facts ReportFacts, priorAnchor string) (Narrative, error)
}
