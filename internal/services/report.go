package services

import (
	"context"
	"sort"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// excerptLimit caps the per-answer transcript excerpt in the facts bundle.
const excerptLimit = 220

// ReportService builds the facts bundle and requests the closing narrative.
// Read-only with respect to session state.
type ReportService struct {
	provider feedback.Provider
	log      *logger.Logger
}

func NewReportService(provider feedback.Provider, log *logger.Logger) *ReportService {
	return &ReportService{provider: provider, log: log.With("service", "report")}
}

// Narrative chains the report call to the evaluation anchor. Provider
// failure yields the static fallback narrative, never an error.
func (s *ReportService) Narrative(ctx context.Context, sess *domain.Session, answers []*domain.Answer, eval EvaluationResult) feedback.Narrative {
	facts := buildFacts(sess, answers, eval)
	n, err := s.provider.FinalizeReport(ctx, facts, eval.Anchor)
	if err != nil {
		s.log.Warn("report narrative failed, using static fallback", "session_id", sess.ID, "error", err)
		return feedback.FallbackNarrative(facts)
	}
	return n
}

func buildFacts(sess *domain.Session, answers []*domain.Answer, eval EvaluationResult) feedback.ReportFacts {
	top, bottom := rankMetrics(eval.Subscores)
	facts := feedback.ReportFacts{
		JobRole:       sess.JobRole,
		AnsweredCount: len(answers),
		OverallScore:  eval.Overall,
		Subscores:     eval.Subscores,
		TopMetrics:    top,
		BottomMetrics: bottom,
	}
	for _, a := range answers {
		facts.Turns = append(facts.Turns, feedback.ReportTurn{
			Index:       a.QuestionIndex,
			Question:    a.QuestionText,
			Excerpt:     excerpt(a.Transcript, excerptLimit),
			CoachingTip: a.DecodeMetrics().CoachingTip,
		})
	}
	return facts
}

// rankMetrics returns the two highest and two lowest scoring metric keys.
// Ties break on the fixed key order so output is deterministic.
func rankMetrics(subscores map[string]float64) (top, bottom []string) {
	keys := append([]string{}, feedback.MetricKeys...)
	sort.SliceStable(keys, func(i, j int) bool {
		return subscores[keys[i]] > subscores[keys[j]]
	})
	top = append(top, keys[0], keys[1])
	bottom = append(bottom, keys[len(keys)-1], keys[len(keys)-2])
	return top, bottom
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
