package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
)

func evalSession() *domain.Session {
	return &domain.Session{ID: uuid.New(), JobRole: "backend", Status: domain.SessionFinished}
}

func TestEvaluatePartialResponseFillsDefaults(t *testing.T) {
	p := &fakeProvider{batchScores: map[string]float64{
		feedback.MetricClarity:        90,
		feedback.MetricStructure:      70,
		feedback.MetricTechnicalDepth: 50,
	}}
	svc := NewEvaluationService(p, planLogger(t))

	res := svc.Evaluate(context.Background(), evalSession(), nil)
	if len(res.Subscores) != 5 {
		t.Fatalf("subscores has %d keys, want 5", len(res.Subscores))
	}
	if res.Subscores[feedback.MetricTradeoffReasoning] != DefaultMetricScore {
		t.Fatalf("missing metric = %v, want default", res.Subscores[feedback.MetricTradeoffReasoning])
	}
	if res.Subscores[feedback.MetricRootCauseAnalysis] != DefaultMetricScore {
		t.Fatalf("missing metric = %v, want default", res.Subscores[feedback.MetricRootCauseAnalysis])
	}
	// mean(90, 70, 50, 45, 45) = 60.0
	if res.Overall != 60.0 {
		t.Fatalf("overall = %v, want 60.0", res.Overall)
	}
}

func TestEvaluateClampsOutOfRangeScores(t *testing.T) {
	p := &fakeProvider{batchScores: map[string]float64{
		feedback.MetricClarity:           140,
		feedback.MetricStructure:         -20,
		feedback.MetricTechnicalDepth:    50,
		feedback.MetricTradeoffReasoning: 50,
		feedback.MetricRootCauseAnalysis: 50,
	}}
	svc := NewEvaluationService(p, planLogger(t))

	res := svc.Evaluate(context.Background(), evalSession(), nil)
	if res.Subscores[feedback.MetricClarity] != 100 {
		t.Fatalf("clarity = %v, want clamped 100", res.Subscores[feedback.MetricClarity])
	}
	if res.Subscores[feedback.MetricStructure] != 0 {
		t.Fatalf("structure = %v, want clamped 0", res.Subscores[feedback.MetricStructure])
	}
}

func TestEvaluateProviderFailureDefaultsAll(t *testing.T) {
	p := &fakeProvider{failBatch: true}
	svc := NewEvaluationService(p, planLogger(t))

	sess := evalSession()
	anchor := "kept-anchor"
	sess.LastAnchorID = &anchor

	res := svc.Evaluate(context.Background(), sess, nil)
	for key, v := range res.Subscores {
		if v != DefaultMetricScore {
			t.Fatalf("metric %s = %v, want default", key, v)
		}
	}
	if res.Anchor != "kept-anchor" {
		t.Fatalf("anchor = %q, want session anchor preserved", res.Anchor)
	}
}

func TestOverallRoundsToOneDecimal(t *testing.T) {
	subscores := map[string]float64{
		feedback.MetricClarity:           71,
		feedback.MetricStructure:         71,
		feedback.MetricTechnicalDepth:    71,
		feedback.MetricTradeoffReasoning: 70,
		feedback.MetricRootCauseAnalysis: 70,
	}
	// mean = 70.6
	if got := overallScore(subscores); got != 70.6 {
		t.Fatalf("overall = %v, want 70.6", got)
	}
}
