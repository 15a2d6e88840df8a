package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/ctxutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// Document extracts text from an uploaded candidate document.
type Document interface {
	ProcessBytes(ctx context.Context, data []byte, mimeType string) (*DocResult, error)
	Close() error
}

type DocResult struct {
	Provider    string `json:"provider"`
	MimeType    string `json:"mime_type"`
	PrimaryText string `json:"primary_text"`
}

type documentService struct {
	log        *logger.Logger
	client     *documentai.DocumentProcessorClient
	name       string
	maxRetries int
}

func NewDocument(log *logger.Logger) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Document")

	projectID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROJECT_ID"))
	location := strings.TrimSpace(os.Getenv("DOCUMENTAI_LOCATION"))
	processorID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_ID"))
	if projectID == "" || processorID == "" {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROJECT_ID or DOCUMENTAI_PROCESSOR_ID")
	}
	if location == "" {
		location = "us"
	}

	ctx := context.Background()
	c, err := documentai.NewDocumentProcessorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	return &documentService{
		log:        slog,
		client:     c,
		name:       fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
		maxRetries: 3,
	}, nil
}

func (s *documentService) ProcessBytes(ctx context.Context, data []byte, mimeType string) (*DocResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if len(data) == 0 {
		return &DocResult{Provider: "gcp_documentai", MimeType: mimeType}, nil
	}

	req := &documentaipb.ProcessRequest{
		Name: s.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := s.retry(ctx, func() (*documentaipb.ProcessResponse, error) {
		return s.client.ProcessDocument(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("documentai process: %w", err)
	}

	text := ""
	if doc := resp.GetDocument(); doc != nil {
		text = collapseWhitespace(doc.GetText())
	}
	return &DocResult{
		Provider:    "gcp_documentai",
		MimeType:    mimeType,
		PrimaryText: text,
	}, nil
}

func (s *documentService) retry(ctx context.Context, fn func() (*documentaipb.ProcessResponse, error)) (*documentaipb.ProcessResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
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
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}

func (s *documentService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
