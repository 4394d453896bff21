// Package input validates and packages user input for an analysis attempt.
package input

import (
	"mime"
	"strings"

	"github.com/ppiankov/cartographer/internal/model"
)

// Payload carries the optional material that accompanies a question.
// Only the field matching the chosen mode is consulted.
type Payload struct {
	Content string          // Pasted text (text mode)
	URL     string          // Page to analyze (url mode)
	File    *model.Document // Uploaded document (document mode)
}

// Collector validates raw input into an AnalysisRequest
type Collector struct {
	maxFileBytes int64
}

// NewCollector creates a collector that accepts documents up to maxFileBytes.
// A non-positive limit falls back to model.MaxDocumentBytes.
func NewCollector(maxFileBytes int64) *Collector {
	if maxFileBytes <= 0 {
		maxFileBytes = model.MaxDocumentBytes
	}
	return &Collector{maxFileBytes: maxFileBytes}
}

// PrepareRequest validates input with the default limits
func PrepareRequest(question string, mode model.InputMode, payload Payload) (*model.AnalysisRequest, error) {
	return NewCollector(model.MaxDocumentBytes).PrepareRequest(question, mode, payload)
}

// PrepareRequest validates the question and the payload for mode and
// returns a normalized request. It has no side effects.
func (c *Collector) PrepareRequest(question string, mode model.InputMode, payload Payload) (*model.AnalysisRequest, error) {
	if strings.TrimSpace(question) == "" {
		return nil, model.ValidationError("question required")
	}

	req := &model.AnalysisRequest{
		Question: question,
		Mode:     mode,
	}

	switch mode {
	case model.ModeText:
		// Whitespace-only content counts as absent
		if strings.TrimSpace(payload.Content) != "" {
			req.Content = payload.Content
		}

	case model.ModeURL:
		u := strings.TrimSpace(payload.URL)
		if u == "" {
			return nil, model.ValidationError("url required")
		}
		req.URL = u

	case model.ModeDocument:
		if payload.File == nil {
			return nil, model.ValidationError("file required")
		}
		if err := c.ValidateDocument(payload.File); err != nil {
			return nil, err
		}
		req.File = payload.File

	default:
		return nil, model.ValidationError("unsupported input mode")
	}

	return req, nil
}

// ValidateDocument checks a document's size and declared content type
func (c *Collector) ValidateDocument(doc *model.Document) error {
	if doc.Size > c.maxFileBytes {
		return model.ValidationError("file too large")
	}
	if !AllowedContentType(doc.ContentType) {
		return model.ValidationError("unsupported file type")
	}
	return nil
}

// AllowedContentType reports whether the declared type is an accepted
// document type. Media type parameters such as charset are ignored.
func AllowedContentType(contentType string) bool {
	mediaType := normalizeMediaType(contentType)
	for _, allowed := range model.AllowedDocumentTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

func normalizeMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mediaType
}

// ParseMode maps a user-facing mode name to an InputMode
func ParseMode(s string) (model.InputMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return model.ModeText, true
	case "url", "link":
		return model.ModeURL, true
	case "document", "doc", "file":
		return model.ModeDocument, true
	}
	return "", false
}
