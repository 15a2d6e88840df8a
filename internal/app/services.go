package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/catalog"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/services"
)

type Services struct {
	Provider   feedback.Provider
	Plans      *services.PlanService
	Evaluation *services.EvaluationService
	Reports    *services.ReportService
	Speech     *services.SpeechService
	Extract    *services.ExtractService
	Interview  *services.InterviewService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	recorder := services.NewAICallRecorder(repos.AICallLog, log)

	// Only configured backends become failover legs: a provider wrapping a
	// nil client must never be reachable from a call site.
	var openaiProvider, geminiProvider feedback.Provider
	if clients.OpenAI != nil {
		openaiProvider = feedback.NewOpenAIProvider(clients.OpenAI, cfg.ScoreCurve, log)
	}
	if clients.Gemini != nil {
		cache := feedback.NewAnchorCache(cfg.AnchorCacheEntries, cfg.AnchorCacheTurns)
		geminiProvider = feedback.NewGeminiProvider(clients.Gemini, cache, cfg.ScoreCurve, log)
	}

	var primary, secondary feedback.Provider
	switch cfg.FeedbackProvider {
	case "gemini":
		primary, secondary = geminiProvider, openaiProvider
	default:
		primary, secondary = openaiProvider, geminiProvider
	}
	if primary == nil {
		if secondary == nil {
			return Services{}, fmt.Errorf("no feedback provider configured: set OPENAI_API_KEY or GEMINI_API_KEY")
		}
		log.Warn("selected feedback provider has no client, using the other backend",
			"selected", cfg.FeedbackProvider)
		primary, secondary = secondary, nil
	}
	provider := feedback.NewFailover(primary, secondary, cfg.ProviderRetry, recorder, log)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Warn("question catalog unavailable", "path", cfg.CatalogPath, "error", err)
	}

	plans := services.NewPlanService(provider, cat, cfg.PlanLength, log)
	evaluation := services.NewEvaluationService(provider, log)
	reports := services.NewReportService(provider, log)
	speech := services.NewSpeechService(clients.GcpTTS, clients.GcpSpeech, cfg.TTSFormat, cfg.STTLanguage, log)
	extract := services.NewExtractService(clients.GcpBucket, clients.GcpDocument, cfg.SnapshotTextLimit, log)

	interview := services.NewInterviewService(
		repos.Session,
		repos.Answer,
		provider,
		plans,
		evaluation,
		reports,
		speech,
		extract,
		clients.EventBus,
		log,
	)

	return Services{
		Provider:   provider,
		Plans:      plans,
		Evaluation: evaluation,
		Reports:    reports,
		Speech:     speech,
		Extract:    extract,
		Interview:  interview,
	}, nil
}
