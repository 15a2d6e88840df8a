package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/http/response"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/apierr"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/services"
)

type InterviewHandler struct {
	interviews *services.InterviewService
}

func NewInterviewHandler(interviews *services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

type startSessionBody struct {
	DisplayName string `json:"displayName"`
	JobRole     string `json:"jobRole"`
	Mode        string `json:"mode"`
	DocumentID  string `json:"documentId"`
}

// POST /api/interviews
func (h *InterviewHandler) Start(c *gin.Context) {
	var body startSessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, apierr.InvalidRequest("invalid request body: %v", err))
		return
	}
	res, err := h.interviews.StartSession(c.Request.Context(), services.StartSessionRequest{
		DisplayName: body.DisplayName,
		JobRole:     body.JobRole,
		Mode:        body.Mode,
		DocumentID:  body.DocumentID,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionId":         res.SessionID,
		"greeting":          res.Greeting,
		"firstQuestionText": res.FirstQuestionText,
		"questionIntent":    res.QuestionIntent,
		"answerGuides":      res.AnswerGuides,
		"totalQuestions":    res.TotalQuestions,
		"questionAudio":     res.QuestionAudio,
	})
}

type submitTurnBody struct {
	QuestionIndex *int   `json:"questionIndex"`
	Transcript    string `json:"transcript"`
	AudioContent  string `json:"audioContent"`
	AudioMimeType string `json:"audioMimeType"`
}

// POST /api/interviews/:id/turns
func (h *InterviewHandler) SubmitTurn(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var body submitTurnBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, apierr.InvalidRequest("invalid request body: %v", err))
		return
	}
	if body.QuestionIndex == nil {
		response.RespondAPIError(c, apierr.InvalidRequest("questionIndex is required"))
		return
	}
	res, err := h.interviews.SubmitTurn(c.Request.Context(), sessionID, services.TurnRequest{
		QuestionIndex: *body.QuestionIndex,
		Transcript:    body.Transcript,
		AudioContent:  body.AudioContent,
		AudioMimeType: body.AudioMimeType,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	payload := gin.H{
		"coachingTip": res.CoachingTip,
		"nextIndex":   res.NextIndex,
		"done":        res.Done,
	}
	if !res.Done {
		payload["nextQuestionText"] = res.NextQuestionText
		payload["questionIntent"] = res.QuestionIntent
		payload["answerGuides"] = res.AnswerGuides
		if res.QuestionAudio != nil {
			payload["questionAudio"] = res.QuestionAudio
		}
	}
	response.RespondOK(c, payload)
}

// POST /api/interviews/:id/report
func (h *InterviewHandler) Report(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	res, err := h.interviews.FinalizeReport(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"overallScore":   res.OverallScore,
		"subscores":      res.Subscores,
		"strengths":      res.Strengths,
		"areasToImprove": res.AreasToImprove,
		"nextSteps":      res.NextSteps,
	})
}

// POST /api/interviews/:id/cancel
func (h *InterviewHandler) Cancel(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.interviews.CancelSession(c.Request.Context(), sessionID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cancelled": true})
}

// GET /api/interviews/:id
func (h *InterviewHandler) Get(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	sess, err := h.interviews.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// GET /api/interviews
func (h *InterviewHandler) List(c *gin.Context) {
	sessions, err := h.interviews.ListSessions(c.Request.Context(), 50)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

func (h *InterviewHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, apierr.InvalidRequest("invalid session id: %v", err))
		return uuid.Nil, false
	}
	return id, true
}
