package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/cartographer/internal/model"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDocument_DetectsPlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("The claim is supported by two studies.\n"))

	d, err := LoadDocument(path, "", 0)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if d.ContentType != model.ContentTypePlainText {
		t.Errorf("expected text/plain, got %q", d.ContentType)
	}
	if d.Name != "notes.txt" {
		t.Errorf("unexpected name %q", d.Name)
	}
	if d.Size != int64(len(d.Data)) {
		t.Errorf("size %d does not match data length %d", d.Size, len(d.Data))
	}
}

func TestLoadDocument_DetectsPDF(t *testing.T) {
	path := writeFile(t, "paper.bin", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))

	d, err := LoadDocument(path, "", 0)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if d.ContentType != model.ContentTypePDF {
		t.Errorf("expected application/pdf, got %q", d.ContentType)
	}
}

func TestLoadDocument_ExtensionFallback(t *testing.T) {
	path := writeFile(t, "essay.docx", []byte("PK\x03\x04"))

	d, err := LoadDocument(path, "", 0)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if d.ContentType != model.ContentTypeDOCX {
		t.Errorf("expected docx type, got %q", d.ContentType)
	}
}

func TestLoadDocument_DeclaredTypeWins(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("plain"))

	d, err := LoadDocument(path, "image/png", 0)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if d.ContentType != "image/png" {
		t.Errorf("expected declared type to be kept, got %q", d.ContentType)
	}
	if err := NewCollector(0).ValidateDocument(d); err == nil || err.Error() != "unsupported file type" {
		t.Errorf("expected unsupported file type, got %v", err)
	}
}

func TestLoadDocument_TooLarge(t *testing.T) {
	path := writeFile(t, "big.txt", []byte("0123456789A"))

	_, err := LoadDocument(path, "", 10)
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if !model.IsKind(err, model.KindValidation) || err.Error() != "file too large" {
		t.Errorf("expected 'file too large' validation error, got %v", err)
	}
}

func TestLoadDocument_Missing(t *testing.T) {
	if _, err := LoadDocument(filepath.Join(t.TempDir(), "nope.txt"), "", 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
