package client

import (
	"fmt"

	"github.com/ppiankov/cartographer/internal/model"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// BuildQuestion collapses a request into the single textual question the
// service accepts. URLs and documents are never sent raw: the URL is embedded
// in an instruction and the document is sent as its decoded text.
func BuildQuestion(req *model.AnalysisRequest) (string, error) {
	switch req.Mode {
	case model.ModeText:
		if req.Content == "" {
			return req.Question, nil
		}
		return fmt.Sprintf("%s\n\nText to analyze: %s", req.Question, req.Content), nil

	case model.ModeURL:
		if req.URL == "" {
			return "", model.ValidationError("url required")
		}
		return fmt.Sprintf("Analyze arguments from this URL: %s", req.URL), nil

	case model.ModeDocument:
		if req.File == nil {
			return "", model.ValidationError("file required")
		}
		text, err := DecodeText(req.File.Data)
		if err != nil {
			return "", fmt.Errorf("decode document: %w", err)
		}
		if req.Question == "" {
			return fmt.Sprintf("Analyze the arguments in this document: %s", text), nil
		}
		return fmt.Sprintf("%s\n\nDocument content: %s", req.Question, text), nil
	}

	return "", model.ValidationError("unsupported input mode")
}

// DecodeText decodes document bytes as text. A UTF-8 or UTF-16 byte order
// mark selects the encoding; otherwise UTF-8 is assumed and invalid
// sequences are replaced with U+FFFD.
func DecodeText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
