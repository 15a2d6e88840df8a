package feedback

import (
	"context"
	"time"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/apierr"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/httpx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// CallRecorder receives the outcome of every provider call for persistence.
// A nil recorder disables logging without changing call behavior.
type CallRecorder interface {
	RecordAICall(ctx context.Context, provider, operation string, duration time.Duration, callErr error)
}

// Failover runs each operation against the primary provider, retries it once
// after a short backoff, then falls back to the secondary. Anchors are
// provider-specific, so a call that lands on the secondary starts with an
// empty anchor and rebuilds context from scratch.
type Failover struct {
	primary    Provider
	secondary  Provider
	retryDelay time.Duration
	recorder   CallRecorder
	log        *logger.Logger
}

func NewFailover(primary, secondary Provider, retryDelay time.Duration, recorder CallRecorder, log *logger.Logger) *Failover {
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	return &Failover{
		primary:    primary,
		secondary:  secondary,
		retryDelay: retryDelay,
		recorder:   recorder,
		log:        log.With("component", "feedback_failover"),
	}
}

func (f *Failover) Name() string { return "failover(" + f.primary.Name() + ")" }

func (f *Failover) Greeting(displayName string) string {
	return f.primary.Greeting(displayName)
}

// attempt is one leg of the ladder: call, record, report.
func (f *Failover) attempt(ctx context.Context, p Provider, operation string, call func(Provider, string) error, anchor string) error {
	start := time.Now()
	err := call(p, anchor)
	if f.recorder != nil {
		f.recorder.RecordAICall(ctx, p.Name(), operation, time.Since(start), err)
	}
	return err
}

// run executes the ladder. priorAnchor flows into the primary attempts only;
// the secondary always starts context-free.
func (f *Failover) run(ctx context.Context, operation string, priorAnchor string, call func(Provider, string) error) error {
	err := f.attempt(ctx, f.primary, operation, call, priorAnchor)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return apierr.ProviderFailure(err)
	}
	f.log.Warn("primary provider failed, retrying", "operation", operation, "provider", f.primary.Name(), "error", err)
	select {
	case <-ctx.Done():
		return apierr.ProviderFailure(err)
	case <-time.After(httpx.JitterSleep(f.retryDelay)):
	}
	err = f.attempt(ctx, f.primary, operation, call, priorAnchor)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || f.secondary == nil {
		return apierr.ProviderFailure(err)
	}
	f.log.Warn("primary provider exhausted, failing over", "operation", operation, "secondary", f.secondary.Name(), "error", err)
	if err = f.attempt(ctx, f.secondary, operation, call, ""); err != nil {
		return apierr.ProviderFailure(err)
	}
	return nil
}

func (f *Failover) GeneratePlan(ctx context.Context, role string, profileSnapshot string, n int, seed int64) (domain.Plan, error) {
	var plan domain.Plan
	err := f.run(ctx, "generate_plan", "", func(p Provider, _ string) error {
		var callErr error
		plan, callErr = p.GeneratePlan(ctx, role, profileSnapshot, n, seed)
		return callErr
	})
	return plan, err
}

func (f *Failover) NextTurnFeedback(ctx context.Context, plan domain.Plan, index int, transcript string, priorAnchor string) (TurnFeedback, error) {
	var fb TurnFeedback
	err := f.run(ctx, "turn_feedback", priorAnchor, func(p Provider, anchor string) error {
		var callErr error
		fb, callErr = p.NextTurnFeedback(ctx, plan, index, transcript, anchor)
		return callErr
	})
	return fb, err
}

func (f *Failover) QuestionIntentAndGuides(ctx context.Context, qType domain.QuestionType, text string, role string) (string, []string, error) {
	var intent string
	var guides []string
	err := f.run(ctx, "question_rubric", "", func(p Provider, _ string) error {
		var callErr error
		intent, guides, callErr = p.QuestionIntentAndGuides(ctx, qType, text, role)
		return callErr
	})
	return intent, guides, err
}

func (f *Failover) BatchEvaluate(ctx context.Context, summaries []AnswerSummary, role string, priorAnchor string) (BatchResult, error) {
	var res BatchResult
	err := f.run(ctx, "batch_evaluate", priorAnchor, func(p Provider, anchor string) error {
		var callErr error
		res, callErr = p.BatchEvaluate(ctx, summaries, role, anchor)
		return callErr
	})
	return res, err
}

func (f *Failover) FinalizeReport(ctx context.Context, facts ReportFacts, priorAnchor string) (Narrative, error) {
	var n Narrative
	err := f.run(ctx, "finalize_report", priorAnchor, func(p Provider, anchor string) error {
		var callErr error
		n, callErr = p.FinalizeReport(ctx, facts, anchor)
		return callErr
	})
	return n, err
}

var _ Provider = (*Failover)(nil)
