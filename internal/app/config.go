package app

import (
	"time"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/envutil"
)

type Config struct {
	Port         string
	JWTSecretKey string

	// FeedbackProvider selects the primary AI backend (openai|gemini);
	// the other one becomes the failover secondary.
	FeedbackProvider string
	ProviderRetry    time.Duration

	PlanLength  int
	CatalogPath string

	ScoreCurve feedback.ScoreCurveParams

	AnchorCacheEntries int
	AnchorCacheTurns   int

	TTSFormat   string
	STTLanguage string

	SnapshotTextLimit int

	Environment string
	Version     string
}

func LoadConfig() Config {
	return Config{
		Port:             envutil.String("PORT", "8080"),
		JWTSecretKey:     envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		FeedbackProvider: envutil.String("FEEDBACK_PROVIDER", "openai"),
		ProviderRetry:    envutil.DurationMS("PROVIDER_RETRY_MS", 500*time.Millisecond),
		PlanLength:       envutil.Int("INTERVIEW_PLAN_LENGTH", 10),
		CatalogPath:      envutil.String("QUESTION_CATALOG_PATH", "configs/question_catalog.yaml"),
		ScoreCurve: feedback.ScoreCurveParams{
			Knee:    envutil.Float("SCORE_CURVE_KNEE", 6.0),
			KneeOut: envutil.Float("SCORE_CURVE_KNEE_OUT", 55.0),
		},
		AnchorCacheEntries: envutil.Int("ANCHOR_CACHE_ENTRIES", 256),
		AnchorCacheTurns:   envutil.Int("ANCHOR_CACHE_TURNS", 12),
		TTSFormat:          envutil.String("TTS_FORMAT", "mp3"),
		STTLanguage:        envutil.String("STT_LANGUAGE", "en-US"),
		SnapshotTextLimit:  envutil.Int("SNAPSHOT_TEXT_LIMIT", 6000),
		Environment:        envutil.String("APP_ENV", "development"),
		Version:            envutil.String("APP_VERSION", ""),
	}
}
