package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"gorm.io/datatypes"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gcp"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// ExtractService turns an uploaded resume object into the profile snapshot
// stored on the session. The snapshot is opaque downstream: the plan prompt
// consumes it only as text. Extraction is best effort; any failure yields an
// empty snapshot and the session starts without profile context.
type ExtractService struct {
	bucket gcp.Bucket
	doc    gcp.Document
	limit  int
	log    *logger.Logger
}

func NewExtractService(bucket gcp.Bucket, doc gcp.Document, limit int, log *logger.Logger) *ExtractService {
	if limit <= 0 {
		limit = 6000
	}
	return &ExtractService{bucket: bucket, doc: doc, limit: limit, log: log.With("service", "extract")}
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
)

// Snapshot fetches the object, extracts its text and returns the snapshot
// document. Returns an empty JSON object on any failure.
func (s *ExtractService) Snapshot(ctx context.Context, documentID string) datatypes.JSON {
	empty := datatypes.JSON([]byte(`{}`))
	if s.bucket == nil || s.doc == nil || strings.TrimSpace(documentID) == "" {
		return empty
	}

	data, mimeType, err := s.bucket.Download(ctx, documentID)
	if err != nil {
		s.log.Warn("resume download failed, starting without profile", "document_id", documentID, "error", err)
		return empty
	}
	res, err := s.doc.ProcessBytes(ctx, data, mimeType)
	if err != nil {
		s.log.Warn("resume extraction failed, starting without profile", "document_id", documentID, "error", err)
		return empty
	}

	text := scrubPII(res.PrimaryText)
	if len(text) > s.limit {
		text = text[:s.limit]
	}
	raw, err := json.Marshal(map[string]string{
		"source": documentID,
		"text":   text,
	})
	if err != nil {
		return empty
	}
	return datatypes.JSON(raw)
}

// scrubPII strips direct contact details before the text reaches a prompt.
func scrubPII(text string) string {
	text = emailPattern.ReplaceAllString(text, "[email]")
	text = phonePattern.ReplaceAllString(text, "[phone]")
	return strings.TrimSpace(text)
}

// SnapshotText pulls the prompt-facing text back out of a stored snapshot.
func SnapshotText(snapshot datatypes.JSON) string {
	if len(snapshot) == 0 {
		return ""
	}
	var doc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(snapshot, &doc); err != nil {
		return ""
	}
	return doc.Text
}
