package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ppiankov/cartographer/internal/model"
)

// extensionTypes maps file extensions to declared types for when content
// sniffing only yields a container format (zip, OLE) or a generic type
var extensionTypes = map[string]string{
	".txt":  model.ContentTypePlainText,
	".text": model.ContentTypePlainText,
	".md":   model.ContentTypePlainText,
	".pdf":  model.ContentTypePDF,
	".doc":  model.ContentTypeMSWord,
	".docx": model.ContentTypeDOCX,
}

// LoadDocument reads a document from disk. If contentType is empty the type
// is detected from the file contents, falling back to the extension.
// Files larger than maxBytes are rejected before they are read.
func LoadDocument(path string, contentType string, maxBytes int64) (*model.Document, error) {
	if maxBytes <= 0 {
		maxBytes = model.MaxDocumentBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxBytes {
		return nil, model.ValidationError("file too large")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	if contentType == "" {
		contentType = DetectContentType(filepath.Base(path), data)
	}

	return &model.Document{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// genericTypes are sniffing results that only identify a container
var genericTypes = map[string]bool{
	"application/octet-stream":  true,
	"application/zip":           true,
	"application/x-ole-storage": true,
}

// DetectContentType sniffs the content type of data, consulting the file
// name when sniffing only identifies a generic container
func DetectContentType(name string, data []byte) string {
	detected := normalizeMediaType(mimetype.Detect(data).String())
	if AllowedContentType(detected) {
		return detected
	}

	if genericTypes[detected] {
		if declared, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
			return declared
		}
	}

	return detected
}
