package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cv_optimizer/config"
)

func TestExtractDocumentText_PlainText(t *testing.T) {
	text, err := ExtractDocumentText("resume.txt", []byte("  张三\n5年后端开发经验\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "5年后端开发经验") {
		t.Errorf("got %q", text)
	}
}

func TestExtractDocumentText_UnsupportedType(t *testing.T) {
	_, err := ExtractDocumentText("resume.exe", []byte("data"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractDocumentText_EmptyDocument(t *testing.T) {
	_, err := ExtractDocumentText("empty.txt", []byte("   \n\t  "))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestExtractDocumentText_CorruptPDF(t *testing.T) {
	if _, err := ExtractDocumentText("broken.pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
}

func TestAllowedExtension(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upload.AllowedExts = []string{".pdf", ".docx", ".txt"}

	tests := []struct {
		filename string
		want     bool
	}{
		{"cv.pdf", true},
		{"CV.PDF", true},
		{"cv.docx", true},
		{"cv.txt", true},
		{"cv.doc", false},
		{"cv", false},
	}

	for _, tt := range tests {
		if got := AllowedExtension(cfg, tt.filename); got != tt.want {
			t.Errorf("AllowedExtension(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestSaveUpload(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upload.Dir = t.TempDir()

	path, err := SaveUpload(cfg, "my resume.pdf", []byte("content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Dir(path) != cfg.Upload.Dir {
		t.Errorf("file saved outside upload dir: %s", path)
	}
	// 文件名带UUID前缀且不含空格
	base := filepath.Base(path)
	if !strings.HasSuffix(base, "_my_resume.pdf") {
		t.Errorf("unexpected stored name: %s", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("saved content = %q", data)
	}
}
