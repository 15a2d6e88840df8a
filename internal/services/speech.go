package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gcp"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// QuestionAudio is the spoken rendering of a question, base64-encoded for
// the JSON response.
type QuestionAudio struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

// SpeechService wraps the optional TTS and STT clients. Either client may
// be nil when the deployment has no GCP credentials; synthesis then returns
// nothing and transcription returns an error the caller maps to validation.
type SpeechService struct {
	tts      gcp.TTS
	stt      gcp.Speech
	format   string
	language string
	log      *logger.Logger
}

func NewSpeechService(tts gcp.TTS, stt gcp.Speech, format, language string, log *logger.Logger) *SpeechService {
	if format == "" {
		format = "mp3"
	}
	if language == "" {
		language = "en-US"
	}
	return &SpeechService{tts: tts, stt: stt, format: format, language: language, log: log.With("service", "speech")}
}

// SynthesizeQuestion is best effort: any failure logs and returns nil, the
// response simply carries no audio.
func (s *SpeechService) SynthesizeQuestion(ctx context.Context, text string) *QuestionAudio {
	if s.tts == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	res, err := s.tts.Synthesize(ctx, text, s.format)
	if err != nil {
		s.log.Warn("question synthesis failed, omitting audio", "error", err)
		return nil
	}
	return &QuestionAudio{
		Content:  base64.StdEncoding.EncodeToString(res.Audio),
		MimeType: res.MimeType,
	}
}

// Transcribe decodes a base64 audio payload and runs speech recognition.
func (s *SpeechService) Transcribe(ctx context.Context, audioB64, mimeType string) (string, error) {
	if s.stt == nil {
		return "", fmt.Errorf("speech recognition is not configured")
	}
	audio, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		return "", fmt.Errorf("decode audio payload: %w", err)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}
	transcript, err := s.stt.TranscribeAudioBytes(ctx, audio, mimeType, s.language)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return strings.TrimSpace(transcript), nil
}
