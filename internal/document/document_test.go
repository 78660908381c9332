package document

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pep299/pdf-generator-api/internal/converter"
	"github.com/pep299/pdf-generator-api/internal/logging"
	"github.com/pep299/pdf-generator-api/internal/perplexity"
	"github.com/pep299/pdf-generator-api/internal/slack"
	"github.com/pep299/pdf-generator-api/internal/storage"
)

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		message string
	}{
		{name: "valid minimal", req: Request{Title: "Guide"}},
		{name: "missing title", req: Request{}, message: "Missing required field: title"},
		{name: "blank title", req: Request{Title: "   "}, message: "Missing required field: title"},
		{name: "short title", req: Request{Title: "AB"}, message: "Title must be at least 3 characters"},
		{name: "three runes", req: Request{Title: "été"}},
		{name: "page count too low", req: Request{Title: "Guide", PageCount: intPtr(4)}, message: "Page count must be between 5 and 50"},
		{name: "page count too high", req: Request{Title: "Guide", PageCount: intPtr(51)}, message: "Page count must be between 5 and 50"},
		{name: "page count lower bound", req: Request{Title: "Guide", PageCount: intPtr(5)}},
		{name: "page count upper bound", req: Request{Title: "Guide", PageCount: intPtr(50)}},
		{name: "title checked before page count", req: Request{Title: "AB", PageCount: intPtr(1)}, message: "Title must be at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.message == "" {
				if err != nil {
					t.Errorf("Expected valid request, got %v", err)
				}
				return
			}

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected *ValidationError, got %T (%v)", err, err)
			}
			if validationErr.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, validationErr.Message)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	req := Request{Title: "Guide"}
	req.Normalize("Emmanuel")

	if req.Author != "Emmanuel" {
		t.Errorf("Expected default author, got '%s'", req.Author)
	}
	if req.Template != DefaultTemplate {
		t.Errorf("Expected template '%s', got '%s'", DefaultTemplate, req.Template)
	}
	if req.Language != "fr" {
		t.Errorf("Expected language 'fr', got '%s'", req.Language)
	}
	if req.CoverStyle != DefaultCoverStyle {
		t.Errorf("Expected cover style '%s', got '%s'", DefaultCoverStyle, req.CoverStyle)
	}
	if req.PrimaryColor != DefaultPrimaryColor {
		t.Errorf("Expected primary color '%s', got '%s'", DefaultPrimaryColor, req.PrimaryColor)
	}
	if req.PageCount == nil || *req.PageCount != DefaultPageCount {
		t.Errorf("Expected page count %d, got %v", DefaultPageCount, req.PageCount)
	}
	if req.Points == nil {
		t.Error("Expected non-nil points")
	}

	custom := Request{Title: "Guide", Author: "Alice", Language: "en", PrimaryColor: "#ABC"}
	custom.Normalize("Emmanuel")
	if custom.Author != "Alice" || custom.Language != "en" {
		t.Errorf("Expected explicit values to be kept, got %+v", custom)
	}
	if custom.PrimaryColor != "#aabbcc" {
		t.Errorf("Expected expanded colour '#aabbcc', got '%s'", custom.PrimaryColor)
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"#3182ce", "#3182ce"},
		{"#FF0000", "#ff0000"},
		{"#f00", "#ff0000"},
		{"red", DefaultPrimaryColor},
		{"#12345", DefaultPrimaryColor},
		{"#3182ce; background: url(x)", DefaultPrimaryColor},
		{"", DefaultPrimaryColor},
	}

	for _, tt := range tests {
		if got := NormalizeColor(tt.input); got != tt.expected {
			t.Errorf("NormalizeColor(%q): expected '%s', got '%s'", tt.input, tt.expected, got)
		}
	}
}

func TestCoverGradient(t *testing.T) {
	tests := []struct {
		style    string
		color    string
		expected string
	}{
		{"gradient-blue", "", "linear-gradient(135deg, #3182ce 0%, #2c5aa0 100%)"},
		{"gradient-purple", "", "linear-gradient(135deg, #a855f7 0%, #7c3aed 100%)"},
		{"gradient-tech", "", "linear-gradient(135deg, #0ea5e9 0%, #06b6d4 100%)"},
		{"minimalist", "#10b981", "linear-gradient(135deg, #10b981 0%, #10b981cc 100%)"},
		{"unknown", "", "linear-gradient(135deg, #3182ce 0%, #2c5aa0 100%)"},
	}

	for _, tt := range tests {
		if got := CoverGradient(tt.style, tt.color); got != tt.expected {
			t.Errorf("CoverGradient(%s): expected '%s', got '%s'", tt.style, tt.expected, got)
		}
	}
}

func TestKeyPointsContent(t *testing.T) {
	content := KeyPointsContent([]string{"Sécurité", "<script>"})

	expected := "<h2>Points Clés</h2><h3>Sécurité</h3><p>Contenu détaillé sur Sécurité...</p>\n" +
		"<h3>&lt;script&gt;</h3><p>Contenu détaillé sur &lt;script&gt;...</p>"
	if content != expected {
		t.Errorf("Expected '%s', got '%s'", expected, content)
	}

	if KeyPointsContent(nil) != "<h2>Points Clés</h2>" {
		t.Errorf("Expected heading only for no points, got '%s'", KeyPointsContent(nil))
	}
}

func TestRenderHTML(t *testing.T) {
	now := time.Date(2025, 1, 15, 14, 30, 5, 0, time.UTC)

	html, err := RenderHTML(Page{
		Title:        "Guide <API>",
		Description:  "Sous-titre",
		Author:       "Emmanuel",
		Content:      "<h2>Introduction</h2><p>Texte</p>",
		CoverStyle:   "gradient-purple",
		PrimaryColor: "#7c3aed",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	for _, expected := range []string{
		`<html lang="fr">`,
		"<title>Guide &lt;API&gt;</title>",
		"<h1>Guide &lt;API&gt;</h1>",
		`<div class="subtitle">Sous-titre</div>`,
		"📄 Par Emmanuel",
		"📅 15 January 2025",
		"<h2>Introduction</h2><p>Texte</p>",
		"linear-gradient(135deg, #a855f7 0%, #7c3aed 100%)",
		"color: #7c3aed;",
		"Ce document a été généré le 15/01/2025 à 14:30:05.",
		"<strong>Auteur:</strong> Emmanuel",
		"© 2025 - PDF Generator API",
		"size: A4;",
	} {
		if !strings.Contains(html, expected) {
			t.Errorf("Expected rendered HTML to contain '%s'", expected)
		}
	}
}

func TestRenderHTMLWithoutDescription(t *testing.T) {
	html, err := RenderHTML(Page{Title: "Guide", Author: "A", Now: time.Now()})
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if strings.Contains(html, `class="subtitle"`) {
		t.Error("Expected no subtitle without a description")
	}
	if !strings.Contains(html, "#3182ce") {
		t.Error("Expected default primary colour")
	}
}

// stubContent records AI requests
type stubContent struct {
	req     perplexity.ContentRequest
	content string
	err     error
}

func (s *stubContent) GenerateContent(ctx context.Context, req perplexity.ContentRequest) (string, error) {
	s.req = req
	return s.content, s.err
}

type stubNotifier struct {
	events []slack.DocumentEvent
	err    error
}

func (s *stubNotifier) SendDocumentGenerated(ctx context.Context, event slack.DocumentEvent) error {
	s.events = append(s.events, event)
	return s.err
}

// failingStore fails every save
type failingStore struct {
	storage.Store
}

func (f failingStore) Save(ctx context.Context, name string, data []byte, contentType string) error {
	return errors.New("disk full")
}

func newTestService(t *testing.T, content ContentGenerator, notifier Notifier) (*Service, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	svc := NewService(ServiceConfig{
		Content:       content,
		Converter:     converter.NewHTMLExport(),
		Store:         store,
		Notifier:      notifier,
		Logger:        logging.New(&buf),
		DefaultAuthor: "Emmanuel",
	})
	return svc, dir, &buf
}

var filenamePattern = regexp.MustCompile(`^document-\d+-[0-9a-f]{8}\.pdf$`)

func TestServiceGenerate(t *testing.T) {
	notifier := &stubNotifier{}
	svc, dir, buf := newTestService(t, nil, notifier)

	result, err := svc.Generate(context.Background(), Request{
		Title:  "Rapport technique",
		Points: []string{"Architecture", "Tests"},
	})
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}

	if !filenamePattern.MatchString(result.Filename) {
		t.Errorf("Unexpected filename '%s'", result.Filename)
	}

	marker, err := os.ReadFile(filepath.Join(dir, result.Filename))
	if err != nil {
		t.Fatalf("Expected PDF marker to exist: %v", err)
	}
	if result.Size != int64(len(marker)) {
		t.Errorf("Expected size %d, got %d", len(marker), result.Size)
	}

	htmlName := strings.TrimSuffix(result.Filename, ".pdf") + ".html"
	html, err := os.ReadFile(filepath.Join(dir, htmlName))
	if err != nil {
		t.Fatalf("Expected HTML export to exist: %v", err)
	}
	if !strings.Contains(string(html), "<h2>Points Clés</h2><h3>Architecture</h3>") {
		t.Error("Expected key point content in the document")
	}
	if !strings.Contains(string(html), "📄 Par Emmanuel") {
		t.Error("Expected default author in the document")
	}

	if len(result.Files) != 2 {
		t.Errorf("Expected 2 stored files, got %v", result.Files)
	}
	if len(notifier.events) != 1 || notifier.events[0].Filename != result.Filename {
		t.Errorf("Expected one notification for the document, got %+v", notifier.events)
	}
	if !strings.Contains(buf.String(), "PDF generation request: Rapport technique") {
		t.Errorf("Expected request log line, got '%s'", buf.String())
	}
}

func TestServiceGenerateWithAI(t *testing.T) {
	content := &stubContent{content: "<h2>AI</h2><p>Generated</p>"}
	svc, dir, _ := newTestService(t, content, nil)

	result, err := svc.Generate(context.Background(), Request{
		Title:    "Guide LLM",
		Template: "llm-best-practices",
		Points:   []string{"Prompting"},
		Language: "en",
		UseAI:    true,
	})
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}

	if content.req.Title != "Guide LLM" || content.req.Template != "llm-best-practices" || content.req.Language != "en" {
		t.Errorf("Unexpected content request %+v", content.req)
	}

	html, _ := os.ReadFile(filepath.Join(dir, strings.TrimSuffix(result.Filename, ".pdf")+".html"))
	if !strings.Contains(string(html), "<h2>AI</h2><p>Generated</p>") {
		t.Error("Expected AI content in the document")
	}
}

func TestServiceGenerateValidationError(t *testing.T) {
	svc, dir, _ := newTestService(t, nil, nil)

	_, err := svc.Generate(context.Background(), Request{Title: "AB"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no files for an invalid request, got %d", len(entries))
	}
}

func TestServiceGenerateContentError(t *testing.T) {
	content := &stubContent{err: context.Canceled}
	svc, _, _ := newTestService(t, content, nil)

	_, err := svc.Generate(context.Background(), Request{Title: "Guide", UseAI: true})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestServiceGenerateStoreError(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	svc.store = failingStore{}

	if _, err := svc.Generate(context.Background(), Request{Title: "Guide"}); err == nil {
		t.Error("Expected error when the store fails")
	}
}

func TestServiceNotifierErrorIgnored(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("slack down")}
	svc, _, buf := newTestService(t, nil, notifier)

	if _, err := svc.Generate(context.Background(), Request{Title: "Guide"}); err != nil {
		t.Fatalf("Expected notifier errors to be ignored, got %v", err)
	}
	if !strings.Contains(buf.String(), "[WARNING] Failed to send Slack notification") {
		t.Errorf("Expected warning log, got '%s'", buf.String())
	}
}

func TestNewFilename(t *testing.T) {
	svc := NewService(ServiceConfig{})
	svc.newID = func() string { return "0a1b2c3d-4e5f-6789-abcd-ef0123456789" }

	name := svc.newFilename(time.Unix(1700000000, 0))
	if name != "document-1700000000-0a1b2c3d.pdf" {
		t.Errorf("Unexpected filename '%s'", name)
	}
}
