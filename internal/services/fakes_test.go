package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gcp"
	redisclient "github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/redis"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/interview"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/requestdata"
)

// memSessionRepo mirrors the CAS semantics of the Postgres repo.
type memSessionRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[uuid.UUID]domain.Session)}
}

func (r *memSessionRepo) Create(dbc dbctx.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[s.ID]; ok {
		return fmt.Errorf("session exists")
	}
	r.store[s.ID] = *s
	return nil
}

func (r *memSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (r *memSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.store {
		if s.UserID == userID {
			c := s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memSessionRepo) UpdateCAS(dbc dbctx.Context, s *domain.Session, readVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.store[s.ID]
	if !ok || cur.Version != readVersion {
		return interview.ErrVersionConflict
	}
	s.Version = readVersion + 1
	r.store[s.ID] = *s
	return nil
}

// memAnswerRepo enforces the (session, index) uniqueness the composite
// index provides in Postgres.
type memAnswerRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]map[int]domain.Answer
}

func newMemAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{store: make(map[uuid.UUID]map[int]domain.Answer)}
}

func (r *memAnswerRepo) Create(dbc dbctx.Context, a *domain.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byIdx, ok := r.store[a.SessionID]
	if !ok {
		byIdx = make(map[int]domain.Answer)
		r.store[a.SessionID] = byIdx
	}
	if _, dup := byIdx[a.QuestionIndex]; dup {
		return interview.ErrDuplicateAnswer
	}
	byIdx[a.QuestionIndex] = *a
	return nil
}

func (r *memAnswerRepo) ExistsByIndex(dbc dbctx.Context, sessionID uuid.UUID, questionIndex int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.store[sessionID][questionIndex]
	return ok, nil
}

func (r *memAnswerRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byIdx := r.store[sessionID]
	keys := make([]int, 0, len(byIdx))
	for i := range byIdx {
		keys = append(keys, i)
	}
	sort.Ints(keys)
	out := make([]*domain.Answer, 0, len(keys))
	for _, i := range keys {
		c := byIdx[i]
		out = append(out, &c)
	}
	return out, nil
}

// fakeProvider is a deterministic in-memory backend with switchable
// failures per operation.
type fakeProvider struct {
	mu          sync.Mutex
	failPlan    bool
	failTurn    bool
	failBatch   bool
	failReport  bool
	failIntent  bool
	batchScores map[string]float64
	turnCalls   int
	anchorSeq   int
}

func (p *fakeProvider) Name() string                { return "fake" }
func (p *fakeProvider) Greeting(name string) string { return feedback.DefaultGreeting(name) }

func (p *fakeProvider) GeneratePlan(ctx context.Context, role, snapshot string, n int, seed int64) (domain.Plan, error) {
	if p.failPlan {
		return domain.Plan{}, errors.New("plan backend down")
	}
	plan := domain.Plan{JobRole: role, Seed: seed}
	for i := 0; i < n; i++ {
		plan.Questions = append(plan.Questions, domain.Question{
			Index:  i,
			Type:   domain.TypeForSlot(i, n),
			Text:   fmt.Sprintf("%s question %d", role, i),
			Intent: "intent",
			Guides: []string{"g1", "g2", "g3"},
		})
	}
	return plan, nil
}

func (p *fakeProvider) NextTurnFeedback(ctx context.Context, plan domain.Plan, index int, transcript, priorAnchor string) (feedback.TurnFeedback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.turnCalls++
	if p.failTurn {
		return feedback.TurnFeedback{}, errors.New("turn backend down")
	}
	p.anchorSeq++
	return feedback.TurnFeedback{
		CoachingTip: fmt.Sprintf("tip %d", index),
		RawRating:   7,
		Anchor:      fmt.Sprintf("anchor-%d", p.anchorSeq),
	}, nil
}

func (p *fakeProvider) QuestionIntentAndGuides(ctx context.Context, qType domain.QuestionType, text, role string) (string, []string, error) {
	if p.failIntent {
		return "", nil, errors.New("intent backend down")
	}
	return "enriched intent", []string{"e1", "e2", "e3"}, nil
}

func (p *fakeProvider) BatchEvaluate(ctx context.Context, summaries []feedback.AnswerSummary, role, priorAnchor string) (feedback.BatchResult, error) {
	if p.failBatch {
		return feedback.BatchResult{}, errors.New("batch backend down")
	}
	scores := p.batchScores
	if scores == nil {
		scores = map[string]float64{
			feedback.MetricClarity:           80,
			feedback.MetricStructure:         70,
			feedback.MetricTechnicalDepth:    60,
			feedback.MetricTradeoffReasoning: 50,
			feedback.MetricRootCauseAnalysis: 40,
		}
	}
	return feedback.BatchResult{Scores: scores, Anchor: "batch-anchor"}, nil
}

func (p *fakeProvider) FinalizeReport(ctx context.Context, facts feedback.ReportFacts, priorAnchor string) (feedback.Narrative, error) {
	if p.failReport {
		return feedback.Narrative{}, errors.New("report backend down")
	}
	return feedback.Narrative{Strengths: "strong", AreasToImprove: "improve", NextSteps: "next"}, nil
}

type capturedEvents struct {
	mu     sync.Mutex
	events []redisclient.Event
}

func (c *capturedEvents) Publish(ctx context.Context, ev redisclient.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *capturedEvents) Close() error { return nil }

func (c *capturedEvents) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeTTS and fakeSpeech stand in for the GCP audio clients.
type fakeTTS struct {
	calls int
	fail  bool
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, format string) (*gcp.TTSResult, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("tts unavailable")
	}
	return &gcp.TTSResult{Audio: []byte("spoken:" + text), MimeType: "audio/mpeg"}, nil
}

func (f *fakeTTS) Close() error { return nil }

type fakeSpeech struct {
	calls int
	fail  bool
}

func (f *fakeSpeech) TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("stt unavailable")
	}
	return string(audio), nil
}

func (f *fakeSpeech) Close() error { return nil }

type harness struct {
	svc      *InterviewService
	sessions *memSessionRepo
	answers  *memAnswerRepo
	provider *fakeProvider
	events   *capturedEvents
	tts      *fakeTTS
	stt      *fakeSpeech
	userID   uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	provider := &fakeProvider{}
	sessions := newMemSessionRepo()
	answers := newMemAnswerRepo()
	events := &capturedEvents{}
	tts := &fakeTTS{}
	stt := &fakeSpeech{}
	svc := NewInterviewService(
		sessions,
		answers,
		provider,
		NewPlanService(provider, nil, 10, log),
		NewEvaluationService(provider, log),
		NewReportService(provider, log),
		NewSpeechService(tts, stt, "", "", log),
		NewExtractService(nil, nil, 0, log),
		events,
		log,
	)
	return &harness{
		svc:      svc,
		sessions: sessions,
		answers:  answers,
		provider: provider,
		events:   events,
		tts:      tts,
		stt:      stt,
		userID:   uuid.New(),
	}
}

func (h *harness) ctx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: h.userID})
}

func (h *harness) ctxAs(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func (h *harness) start(t *testing.T) StartSessionResult {
	t.Helper()
	res, err := h.svc.StartSession(h.ctx(), StartSessionRequest{JobRole: "backend", DisplayName: "Dana"})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return res
}

func (h *harness) startVoice(t *testing.T) StartSessionResult {
	t.Helper()
	res, err := h.svc.StartSession(h.ctx(), StartSessionRequest{JobRole: "backend", DisplayName: "Dana", Mode: "voice"})
	if err != nil {
		t.Fatalf("StartSession(voice): %v", err)
	}
	return res
}

func (h *harness) submit(t *testing.T, sessionID uuid.UUID, index int) TurnResult {
	t.Helper()
	res, err := h.svc.SubmitTurn(h.ctx(), sessionID, TurnRequest{
		QuestionIndex: index,
		Transcript:    fmt.Sprintf("answer %d", index),
	})
	if err != nil {
		t.Fatalf("SubmitTurn(%d): %v", index, err)
	}
	return res
}
