package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	redisclient "github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/redis"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/interview"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/apierr"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

type StartSessionRequest struct {
	DisplayName string
	JobRole     string
	Mode        string
	DocumentID  string
}

type StartSessionResult struct {
	SessionID         uuid.UUID
	Greeting          string
	FirstQuestionText string
	QuestionIntent    string
	AnswerGuides      []string
	TotalQuestions    int
	QuestionAudio     *QuestionAudio
}

type TurnRequest struct {
	QuestionIndex int
	Transcript    string
	AudioContent  string
	AudioMimeType string
}

type TurnResult struct {
	NextQuestionText string
	QuestionIntent   string
	AnswerGuides     []string
	CoachingTip      string
	NextIndex        int
	Done             bool
	QuestionAudio    *QuestionAudio
}

type ReportResult struct {
	OverallScore   float64
	Subscores      map[string]float64
	Strengths      string
	AreasToImprove string
	NextSteps      string
}

// InterviewService is the session state machine and turn protocol.
type InterviewService struct {
	sessions interview.SessionRepo
	answers  interview.AnswerRepo
	provider feedback.Provider
	plans    *PlanService
	eval     *EvaluationService
	reports  *ReportService
	speech   *SpeechService
	extract  *ExtractService
	events   redisclient.EventBus
	log      *logger.Logger
}

func NewInterviewService(
	sessions interview.SessionRepo,
	answers interview.AnswerRepo,
	provider feedback.Provider,
	plans *PlanService,
	eval *EvaluationService,
	reports *ReportService,
	speech *SpeechService,
	extract *ExtractService,
	events redisclient.EventBus,
	log *logger.Logger,
) *InterviewService {
	return &InterviewService{
		sessions: sessions,
		answers:  answers,
		provider: provider,
		plans:    plans,
		eval:     eval,
		reports:  reports,
		speech:   speech,
		extract:  extract,
		events:   events,
		log:      log.With("service", "interview"),
	}
}

func (s *InterviewService) StartSession(ctx context.Context, req StartSessionRequest) (StartSessionResult, error) {
	role := strings.TrimSpace(req.JobRole)
	if role == "" {
		return StartSessionResult{}, apierr.InvalidRequest("jobRole is required")
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return StartSessionResult{}, err
	}

	sessionID := uuid.New()
	ctx = WithSessionID(ctx, sessionID)

	snapshot := s.extract.Snapshot(ctx, req.DocumentID)
	plan := s.plans.Generate(ctx, role, SnapshotText(snapshot))

	encoded, err := plan.Encode()
	if err != nil {
		return StartSessionResult{}, err
	}
	sess := &domain.Session{
		ID:              sessionID,
		UserID:          ownerID(ctx),
		DisplayName:     strings.TrimSpace(req.DisplayName),
		JobRole:         role,
		Mode:            mode,
		ProfileSnapshot: snapshot,
		Plan:            encoded,
		Status:          domain.SessionActive,
	}

	first, _ := plan.QuestionAt(0)
	var audio *QuestionAudio

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.sessions.Create(dbctx.Context{Ctx: gctx}, sess)
	})
	if mode == domain.ModeVoice {
		g.Go(func() error {
			audio = s.speech.SynthesizeQuestion(gctx, first.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StartSessionResult{}, err
	}

	s.publish(ctx, redisclient.Event{Type: "session_started", SessionID: sess.ID.String(), UserID: sess.UserID.String()})

	return StartSessionResult{
		SessionID:         sess.ID,
		Greeting:          s.provider.Greeting(sess.DisplayName),
		FirstQuestionText: first.Text,
		QuestionIntent:    first.Intent,
		AnswerGuides:      first.Guides,
		TotalQuestions:    plan.Len(),
		QuestionAudio:     audio,
	}, nil
}

func (s *InterviewService) SubmitTurn(ctx context.Context, sessionID uuid.UUID, req TurnRequest) (TurnResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	sess, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if sess == nil {
		return TurnResult{}, apierr.NotFound("session %s not found", sessionID)
	}
	if sess.UserID != ownerID(ctx) {
		return TurnResult{}, apierr.Forbidden("session %s belongs to another user", sessionID)
	}
	if sess.IsTerminal() {
		return TurnResult{}, apierr.Conflict("session %s already %s", sessionID, sess.Status)
	}
	if req.QuestionIndex != sess.CurrentIndex {
		return TurnResult{}, apierr.OutOfOrder("question index %d does not match session pointer %d", req.QuestionIndex, sess.CurrentIndex)
	}
	// The pointer check above already rejects an index the session moved
	// past, so a resubmitted turn normally reports out_of_order. This
	// existence check only catches the concurrent race where the answer
	// row was written but the pointer has not advanced yet.
	if exists, err := s.answers.ExistsByIndex(dbc, sess.ID, req.QuestionIndex); err != nil {
		return TurnResult{}, err
	} else if exists {
		return TurnResult{}, apierr.Conflict("question %d already answered", req.QuestionIndex)
	}

	transcript, err := s.resolveTranscript(ctx, sess, req)
	if err != nil {
		return TurnResult{}, err
	}

	plan, err := sess.DecodePlan()
	if err != nil {
		return TurnResult{}, err
	}
	question, ok := plan.QuestionAt(req.QuestionIndex)
	if !ok {
		return TurnResult{}, apierr.InvalidRequest("question index %d outside plan", req.QuestionIndex)
	}

	ctx = WithSessionID(ctx, sess.ID)
	readVersion := sess.Version
	prevAnchor := sess.Anchor()

	fb, fbErr := s.provider.NextTurnFeedback(ctx, plan, req.QuestionIndex, transcript, prevAnchor)
	if fbErr != nil {
		s.log.Warn("turn feedback failed, substituting fallback tip",
			"session_id", sess.ID, "index", req.QuestionIndex, "error", fbErr)
		// No provider produced an anchor this turn; the empty anchor leaves
		// the session's last anchor untouched via SetAnchor's guard.
		fb = feedback.TurnFeedback{CoachingTip: feedback.FallbackTip(question.Type)}
	}

	answer := &domain.Answer{
		ID:            uuid.New(),
		SessionID:     sess.ID,
		QuestionIndex: req.QuestionIndex,
		QuestionType:  question.Type,
		QuestionText:  question.Text,
		Transcript:    transcript,
		Metrics: domain.EncodeMetrics(domain.AnswerMetrics{
			CoachingTip: fb.CoachingTip,
			RawRating:   fb.RawRating,
			Fallback:    fbErr != nil,
		}),
		AnchorID:     fb.Anchor,
		PrevAnchorID: prevAnchor,
	}
	if err := s.answers.Create(dbc, answer); err != nil {
		if errors.Is(err, interview.ErrDuplicateAnswer) {
			return TurnResult{}, apierr.Conflict("question %d already answered", req.QuestionIndex)
		}
		return TurnResult{}, err
	}

	sess.SetAnchor(fb.Anchor)
	nextIndex := req.QuestionIndex + 1
	done := nextIndex >= plan.Len()
	if err := sess.AdvancePointer(nextIndex, plan.Len(), time.Now().UTC()); err != nil {
		return TurnResult{}, err
	}
	if err := s.sessions.UpdateCAS(dbc, sess, readVersion); err != nil {
		if errors.Is(err, interview.ErrVersionConflict) {
			return TurnResult{}, apierr.Conflict("session %s was updated concurrently, retry", sessionID)
		}
		return TurnResult{}, err
	}

	res := TurnResult{CoachingTip: fb.CoachingTip, NextIndex: nextIndex, Done: done}
	if done {
		s.publish(ctx, redisclient.Event{Type: "session_finished", SessionID: sess.ID.String(), UserID: sess.UserID.String(), Index: req.QuestionIndex})
		return res, nil
	}

	next, _ := plan.QuestionAt(nextIndex)
	res.NextQuestionText = next.Text
	res.QuestionIntent = next.Intent
	res.AnswerGuides = next.Guides
	if sess.Mode == domain.ModeVoice {
		res.QuestionAudio = s.speech.SynthesizeQuestion(ctx, next.Text)
	}
	s.publish(ctx, redisclient.Event{Type: "turn_completed", SessionID: sess.ID.String(), UserID: sess.UserID.String(), Index: req.QuestionIndex})
	return res, nil
}

// resolveTranscript applies voice-mode transcription: audio is only
// consulted when no text was submitted.
func (s *InterviewService) resolveTranscript(ctx context.Context, sess *domain.Session, req TurnRequest) (string, error) {
	transcript := strings.TrimSpace(req.Transcript)
	if transcript != "" {
		return transcript, nil
	}
	if sess.Mode == domain.ModeVoice && req.AudioContent != "" {
		got, err := s.speech.Transcribe(ctx, req.AudioContent, req.AudioMimeType)
		if err != nil {
			return "", apierr.InvalidRequest("could not transcribe audio: %v", err)
		}
		transcript = got
	}
	if transcript == "" {
		return "", apierr.InvalidRequest("transcript is required")
	}
	return transcript, nil
}

func (s *InterviewService) FinalizeReport(ctx context.Context, sessionID uuid.UUID) (ReportResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	sess, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return ReportResult{}, err
	}
	if sess == nil {
		return ReportResult{}, apierr.NotFound("session %s not found", sessionID)
	}
	if sess.UserID != ownerID(ctx) {
		return ReportResult{}, apierr.Forbidden("session %s belongs to another user", sessionID)
	}
	if sess.Status != domain.SessionFinished {
		return ReportResult{}, apierr.Conflict("session %s is %s, report requires a finished session", sessionID, sess.Status)
	}

	answers, err := s.answers.ListBySession(dbc, sess.ID)
	if err != nil {
		return ReportResult{}, err
	}

	ctx = WithSessionID(ctx, sess.ID)
	eval := s.eval.Evaluate(ctx, sess, answers)
	narrative := s.reports.Narrative(ctx, sess, answers, eval)

	s.publish(ctx, redisclient.Event{Type: "report_ready", SessionID: sess.ID.String(), UserID: sess.UserID.String()})

	return ReportResult{
		OverallScore:   eval.Overall,
		Subscores:      eval.Subscores,
		Strengths:      narrative.Strengths,
		AreasToImprove: narrative.AreasToImprove,
		NextSteps:      narrative.NextSteps,
	}, nil
}

func (s *InterviewService) CancelSession(ctx context.Context, sessionID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}

	sess, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return apierr.NotFound("session %s not found", sessionID)
	}
	if sess.UserID != ownerID(ctx) {
		return apierr.Forbidden("session %s belongs to another user", sessionID)
	}
	if sess.IsTerminal() {
		return apierr.Conflict("session %s already %s", sessionID, sess.Status)
	}

	readVersion := sess.Version
	if err := sess.Cancel(time.Now().UTC()); err != nil {
		return apierr.Conflict("%v", err)
	}
	if err := s.sessions.UpdateCAS(dbc, sess, readVersion); err != nil {
		if errors.Is(err, interview.ErrVersionConflict) {
			return apierr.Conflict("session %s was updated concurrently, retry", sessionID)
		}
		return err
	}
	s.publish(ctx, redisclient.Event{Type: "session_cancelled", SessionID: sess.ID.String(), UserID: sess.UserID.String()})
	return nil
}

func (s *InterviewService) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	sess, err := s.sessions.GetByID(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apierr.NotFound("session %s not found", sessionID)
	}
	if sess.UserID != ownerID(ctx) {
		return nil, apierr.Forbidden("session %s belongs to another user", sessionID)
	}
	return sess, nil
}

func (s *InterviewService) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	return s.sessions.ListByUser(dbctx.Context{Ctx: ctx}, ownerID(ctx), limit)
}

func (s *InterviewService) publish(ctx context.Context, ev redisclient.Event) {
	if s.events == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", "type", ev.Type, "session_id", ev.SessionID, "error", err)
	}
}

func parseMode(raw string) (domain.SessionMode, error) {
	switch domain.SessionMode(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.ModeVoice:
		return domain.ModeVoice, nil
	case domain.ModeText, "":
		return domain.ModeText, nil
	default:
		return "", apierr.InvalidRequest("mode must be text or voice")
	}
}
