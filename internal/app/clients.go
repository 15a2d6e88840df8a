package app

import (
	"os"
	"strings"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gcp"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gemini"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/openai"
	redisclient "github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/redis"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// Clients holds the external service clients. The GCP and Redis entries are
// optional: a missing credential logs a warning and leaves the feature off.
type Clients struct {
	OpenAI openai.Client
	Gemini gemini.Client

	GcpBucket   gcp.Bucket
	GcpDocument gcp.Document
	GcpSpeech   gcp.Speech
	GcpTTS      gcp.TTS

	EventBus redisclient.EventBus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients
	var err error

	if c.OpenAI, err = openai.NewClient(log); err != nil {
		log.Warn("OpenAI client unavailable", "error", err)
	}
	if c.Gemini, err = gemini.NewClient(log); err != nil {
		log.Warn("Gemini client unavailable", "error", err)
	}

	if strings.TrimSpace(os.Getenv("GCS_BUCKET")) != "" {
		if c.GcpBucket, err = gcp.NewBucket(log); err != nil {
			log.Warn("GCS bucket client unavailable", "error", err)
		}
	}
	if strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_ID")) != "" {
		if c.GcpDocument, err = gcp.NewDocument(log); err != nil {
			log.Warn("Document AI client unavailable", "error", err)
		}
	}
	if c.GcpSpeech, err = gcp.NewSpeech(log); err != nil {
		log.Warn("Speech-to-Text client unavailable", "error", err)
	}
	if c.GcpTTS, err = gcp.NewTTS(log); err != nil {
		log.Warn("Text-to-Speech client unavailable", "error", err)
	}

	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		if c.EventBus, err = redisclient.NewEventBus(log); err != nil {
			log.Warn("Redis event bus unavailable", "error", err)
		}
	}

	return c, nil
}
