package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/envutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/httpx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// Message is one prior exchange turn replayed into a request. Gemini has no
// server-side conversation store, so callers supply history explicitly.
type Message struct {
	Role string // "user" or "model"
	Text string
}

type Client interface {
	GenerateText(ctx context.Context, system string, history []Message, user string) (string, error)
	// GenerateJSON asks for an application/json response and parses it.
	GenerateJSON(ctx context.Context, system string, history []Message, user string) (map[string]any, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	return &client{
		log:        log.With("client", "gemini"),
		baseURL:    strings.TrimRight(envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"), "/"),
		apiKey:     apiKey,
		model:      envutil.String("GEMINI_MODEL", "gemini-2.0-flash"),
		httpClient: &http.Client{Timeout: envutil.DurationMS("GEMINI_TIMEOUT_MS", 30*time.Second)},
		maxRetries: envutil.Int("GEMINI_MAX_RETRIES", 2),
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func (e *httpError) HTTPStatusCode() int { return e.StatusCode }

type generateContentRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (c *client) endpoint() string {
	return c.baseURL + "/" + c.model + ":generateContent"
}

func (c *client) generate(ctx context.Context, system string, history []Message, user string, mimeType string) (string, error) {
	req := generateContentRequest{
		GenerationConfig: generationConfig{Temperature: 0.3, ResponseMimeType: mimeType},
	}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	for _, m := range history {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}
	req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: user}}})

	raw, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}

	var resp generateContentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("gemini decode error: %w; raw=%s", err, string(raw))
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty candidates")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response text")
	}
	return text, nil
}

func (c *client) do(ctx context.Context, body any) ([]byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			return raw, nil
		}
		if !httpx.IsRetryableError(err) {
			return nil, err
		}
		if attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("Gemini request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) GenerateText(ctx context.Context, system string, history []Message, user string) (string, error) {
	return c.generate(ctx, system, history, user, "")
}

func (c *client) GenerateJSON(ctx context.Context, system string, history []Message, user string) (map[string]any, error) {
	text, err := c.generate(ctx, system, history, user, "application/json")
	if err != nil {
		return nil, err
	}
	// Some models wrap JSON in a fenced block even with responseMimeType set.
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "```json"), "```"))
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("gemini: parse model JSON: %w; text=%s", err, text)
	}
	return obj, nil
}
