package services

import (
	"context"
	"math"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// DefaultMetricScore fills any metric the provider response lacks. Mid-range
// on purpose: an absent rating is not evidence of a bad answer.
const DefaultMetricScore = 45.0

// EvaluationResult always carries exactly the five metric keys, each
// clamped to [0,100].
type EvaluationResult struct {
	Subscores map[string]float64
	Overall   float64
	Anchor    string
}

// EvaluationService runs the end-of-session batch scoring.
type EvaluationService struct {
	provider feedback.Provider
	log      *logger.Logger
}

func NewEvaluationService(provider feedback.Provider, log *logger.Logger) *EvaluationService {
	return &EvaluationService{provider: provider, log: log.With("service", "evaluation")}
}

// Evaluate scores the session's answers. Provider failure never propagates:
// all five metrics fall to the documented default.
func (s *EvaluationService) Evaluate(ctx context.Context, sess *domain.Session, answers []*domain.Answer) EvaluationResult {
	summaries := make([]feedback.AnswerSummary, 0, len(answers))
	for _, a := range answers {
		summaries = append(summaries, feedback.AnswerSummary{
			Index:        a.QuestionIndex,
			QuestionType: a.QuestionType,
			QuestionText: a.QuestionText,
			Transcript:   a.Transcript,
			CoachingTip:  a.DecodeMetrics().CoachingTip,
		})
	}

	res, err := s.provider.BatchEvaluate(ctx, summaries, sess.JobRole, sess.Anchor())
	if err != nil {
		s.log.Warn("batch evaluation failed, defaulting all metrics", "session_id", sess.ID, "error", err)
		res = feedback.BatchResult{Scores: map[string]float64{}, Anchor: sess.Anchor()}
	}

	subscores := make(map[string]float64, len(feedback.MetricKeys))
	for _, key := range feedback.MetricKeys {
		v, ok := res.Scores[key]
		if !ok {
			s.log.Warn("metric missing from evaluation, using default", "session_id", sess.ID, "metric", key)
			v = DefaultMetricScore
		}
		subscores[key] = clamp100(v)
	}

	return EvaluationResult{
		Subscores: subscores,
		Overall:   overallScore(subscores),
		Anchor:    res.Anchor,
	}
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// overallScore is the arithmetic mean of the five metrics, one decimal.
func overallScore(subscores map[string]float64) float64 {
	var sum float64
	for _, key := range feedback.MetricKeys {
		sum += subscores[key]
	}
	return math.Round(sum/float64(len(feedback.MetricKeys))*10) / 10
}
