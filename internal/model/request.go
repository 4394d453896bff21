package model

// InputMode selects which optional payload accompanies the question
type InputMode string

const (
	ModeText     InputMode = "text"
	ModeURL      InputMode = "url"
	ModeDocument InputMode = "document"
)

// MaxDocumentBytes is the largest document accepted for analysis (10 MiB)
const MaxDocumentBytes int64 = 10 << 20

// Allowed document content types
const (
	ContentTypePlainText = "text/plain"
	ContentTypePDF       = "application/pdf"
	ContentTypeMSWord    = "application/msword"
	ContentTypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedDocumentTypes lists the media types accepted for document uploads
var AllowedDocumentTypes = []string{
	ContentTypePlainText,
	ContentTypePDF,
	ContentTypeMSWord,
	ContentTypeDOCX,
}

// Document is an uploaded file together with its declared content type
type Document struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// AnalysisRequest is a validated, normalized analysis input.
// Exactly the field matching Mode is populated.
type AnalysisRequest struct {
	Question string
	Mode     InputMode
	Content  string    // ModeText only, may be empty
	URL      string    // ModeURL only
	File     *Document // ModeDocument only
}
