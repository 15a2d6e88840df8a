package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/apierr"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// stubProvider counts calls and fails the first failUntil attempts of each
// operation.
type stubProvider struct {
	mu        sync.Mutex
	name      string
	failUntil int
	calls     int
	anchors   []string
}

func (s *stubProvider) bump(anchor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.anchors = append(s.anchors, anchor)
	if s.calls <= s.failUntil {
		return errors.New(s.name + " unavailable")
	}
	return nil
}

func (s *stubProvider) Name() string                       { return s.name }
func (s *stubProvider) Greeting(displayName string) string { return DefaultGreeting(displayName) }

func (s *stubProvider) GeneratePlan(ctx context.Context, role, snapshot string, n int, seed int64) (domain.Plan, error) {
	if err := s.bump(""); err != nil {
		return domain.Plan{}, err
	}
	return StaticPlan(role, n, seed), nil
}

func (s *stubProvider) NextTurnFeedback(ctx context.Context, plan domain.Plan, index int, transcript, priorAnchor string) (TurnFeedback, error) {
	if err := s.bump(priorAnchor); err != nil {
		return TurnFeedback{}, err
	}
	return TurnFeedback{CoachingTip: "tip from " + s.name, RawRating: 7, Anchor: s.name + "-anchor"}, nil
}

func (s *stubProvider) QuestionIntentAndGuides(ctx context.Context, qType domain.QuestionType, text, role string) (string, []string, error) {
	if err := s.bump(""); err != nil {
		return "", nil, err
	}
	return "intent", []string{"a", "b", "c"}, nil
}

func (s *stubProvider) BatchEvaluate(ctx context.Context, summaries []AnswerSummary, role, priorAnchor string) (BatchResult, error) {
	if err := s.bump(priorAnchor); err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Scores: map[string]float64{MetricClarity: 70}, Anchor: s.name + "-anchor"}, nil
}

func (s *stubProvider) FinalizeReport(ctx context.Context, facts ReportFacts, priorAnchor string) (Narrative, error) {
	if err := s.bump(priorAnchor); err != nil {
		return Narrative{}, err
	}
	return Narrative{Strengths: "s", AreasToImprove: "a", NextSteps: "n"}, nil
}

type recordedCall struct {
	provider  string
	operation string
	failed    bool
}

type stubRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *stubRecorder) RecordAICall(ctx context.Context, provider, operation string, d time.Duration, callErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{provider: provider, operation: operation, failed: callErr != nil})
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestFailoverPrimarySucceedsFirstTry(t *testing.T) {
	primary := &stubProvider{name: "p"}
	secondary := &stubProvider{name: "s"}
	f := NewFailover(primary, secondary, time.Millisecond, nil, testLogger(t))

	fb, err := f.NextTurnFeedback(context.Background(), StaticPlan("backend", 10, 1), 0, "answer", "prior")
	if err != nil {
		t.Fatalf("NextTurnFeedback: %v", err)
	}
	if fb.CoachingTip != "tip from p" {
		t.Fatalf("tip = %q, want primary's", fb.CoachingTip)
	}
	if primary.calls != 1 || secondary.calls != 0 {
		t.Fatalf("calls = primary %d secondary %d, want 1/0", primary.calls, secondary.calls)
	}
}

func TestFailoverRetriesPrimaryOnce(t *testing.T) {
	primary := &stubProvider{name: "p", failUntil: 1}
	secondary := &stubProvider{name: "s"}
	f := NewFailover(primary, secondary, time.Millisecond, nil, testLogger(t))

	fb, err := f.NextTurnFeedback(context.Background(), StaticPlan("backend", 10, 1), 0, "answer", "prior")
	if err != nil {
		t.Fatalf("NextTurnFeedback: %v", err)
	}
	if fb.Anchor != "p-anchor" {
		t.Fatalf("anchor = %q, want primary's", fb.Anchor)
	}
	if primary.calls != 2 || secondary.calls != 0 {
		t.Fatalf("calls = primary %d secondary %d, want 2/0", primary.calls, secondary.calls)
	}
}

func TestFailoverFallsToSecondaryWithEmptyAnchor(t *testing.T) {
	primary := &stubProvider{name: "p", failUntil: 2}
	secondary := &stubProvider{name: "s"}
	f := NewFailover(primary, secondary, time.Millisecond, nil, testLogger(t))

	fb, err := f.NextTurnFeedback(context.Background(), StaticPlan("backend", 10, 1), 0, "answer", "prior")
	if err != nil {
		t.Fatalf("NextTurnFeedback: %v", err)
	}
	if fb.Anchor != "s-anchor" {
		t.Fatalf("anchor = %q, want secondary's", fb.Anchor)
	}
	if got := secondary.anchors[0]; got != "" {
		t.Fatalf("secondary received prior anchor %q, want empty", got)
	}
	if got := primary.anchors[1]; got != "prior" {
		t.Fatalf("primary retry received anchor %q, want %q", got, "prior")
	}
}

func TestFailoverAllLegsFail(t *testing.T) {
	primary := &stubProvider{name: "p", failUntil: 99}
	secondary := &stubProvider{name: "s", failUntil: 99}
	f := NewFailover(primary, secondary, time.Millisecond, nil, testLogger(t))

	_, err := f.BatchEvaluate(context.Background(), nil, "backend", "")
	if err == nil {
		t.Fatal("want error when every leg fails")
	}
	if apierr.CodeOf(err) != "provider_failure" {
		t.Fatalf("error code = %q, want provider_failure", apierr.CodeOf(err))
	}
	if primary.calls != 2 || secondary.calls != 1 {
		t.Fatalf("calls = primary %d secondary %d, want 2/1", primary.calls, secondary.calls)
	}
}

func TestFailoverWithoutSecondary(t *testing.T) {
	// A single-backend deployment wires nil as the secondary leg; exhausting
	// the primary must surface an error, never reach a missing provider.
	primary := &stubProvider{name: "p", failUntil: 99}
	f := NewFailover(primary, nil, time.Millisecond, nil, testLogger(t))

	_, err := f.NextTurnFeedback(context.Background(), StaticPlan("backend", 10, 1), 0, "answer", "prior")
	if err == nil {
		t.Fatal("want error when the only leg fails")
	}
	if apierr.CodeOf(err) != "provider_failure" {
		t.Fatalf("error code = %q, want provider_failure", apierr.CodeOf(err))
	}
	if primary.calls != 2 {
		t.Fatalf("primary calls = %d, want 2", primary.calls)
	}
}

func TestFailoverRecordsEveryAttempt(t *testing.T) {
	primary := &stubProvider{name: "p", failUntil: 2}
	secondary := &stubProvider{name: "s"}
	rec := &stubRecorder{}
	f := NewFailover(primary, secondary, time.Millisecond, rec, testLogger(t))

	if _, err := f.FinalizeReport(context.Background(), ReportFacts{}, ""); err != nil {
		t.Fatalf("FinalizeReport: %v", err)
	}
	if len(rec.calls) != 3 {
		t.Fatalf("recorded %d calls, want 3", len(rec.calls))
	}
	if !rec.calls[0].failed || !rec.calls[1].failed || rec.calls[2].failed {
		t.Fatalf("unexpected outcome sequence: %+v", rec.calls)
	}
	if rec.calls[2].provider != "s" || rec.calls[2].operation != "finalize_report" {
		t.Fatalf("last record = %+v, want secondary finalize_report", rec.calls[2])
	}
}

func TestFailoverCancelledContextSkipsRetry(t *testing.T) {
	primary := &stubProvider{name: "p", failUntil: 99}
	secondary := &stubProvider{name: "s"}
	f := NewFailover(primary, secondary, time.Millisecond, nil, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.GeneratePlan(ctx, "backend", "", 10, 1)
	if err == nil {
		t.Fatal("want error on cancelled context")
	}
	if primary.calls != 1 || secondary.calls != 0 {
		t.Fatalf("calls = primary %d secondary %d, want 1/0", primary.calls, secondary.calls)
	}
}
