package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/ctxutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/envutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// TTS renders interviewer questions as audio. Callers treat every failure
// as "no audio"; it never blocks a turn.
type TTS interface {
	Synthesize(ctx context.Context, text string, format string) (*TTSResult, error)
	Close() error
}

type TTSResult struct {
	Audio    []byte `json:"audio"`
	MimeType string `json:"mime_type"`
}

type ttsService struct {
	log        *logger.Logger
	client     *texttospeech.Client
	voice      string
	language   string
	maxRetries int
}

func NewTTS(log *logger.Logger) (TTS, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	ctx := context.Background()
	c, err := texttospeech.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}

	return &ttsService{
		log:        log.With("service", "gcp.TTS"),
		client:     c,
		voice:      envutil.String("TTS_VOICE", "en-US-Neural2-D"),
		language:   envutil.String("TTS_LANGUAGE", "en-US"),
		maxRetries: 2,
	}, nil
}

func (s *ttsService) Synthesize(ctx context.Context, text string, format string) (*TTSResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("missing text")
	}

	encoding, mime := encodingForFormat(format)
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: encoding,
		},
	}

	var resp *texttospeechpb.SynthesizeSpeechResponse
	backoff := 500 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var err error
		resp, err = s.client.SynthesizeSpeech(ctx, req)
		if err == nil {
			last = nil
			break
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	if last != nil {
		return nil, fmt.Errorf("tts synthesize: %w", last)
	}

	return &TTSResult{Audio: resp.GetAudioContent(), MimeType: mime}, nil
}

func encodingForFormat(format string) (texttospeechpb.AudioEncoding, string) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "wav", "linear16":
		return texttospeechpb.AudioEncoding_LINEAR16, "audio/wav"
	case "ogg", "ogg_opus":
		return texttospeechpb.AudioEncoding_OGG_OPUS, "audio/ogg"
	default:
		return texttospeechpb.AudioEncoding_MP3, "audio/mpeg"
	}
}

func (s *ttsService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
