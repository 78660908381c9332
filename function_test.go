package cloudfunctions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
)

var testOutputDir string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "pdfgen-function")
	if err != nil {
		panic(err)
	}
	testOutputDir = filepath.Join(dir, "generated_pdfs")

	// Set up test environment variables
	os.Setenv("STORAGE_BACKEND", "local")
	os.Setenv("OUTPUT_DIR", testOutputDir)
	os.Setenv("TEMPLATES_DIR", filepath.Join(dir, "templates"))
	os.Setenv("PDF_ENGINE", "none")
	os.Setenv("PERPLEXITY_API_KEY", "")
	os.Setenv("SLACK_BOT_TOKEN", "")
	os.Setenv("CLEANUP_AUTH_TOKEN", "")

	// Run tests
	code := m.Run()

	// Clean up
	os.RemoveAll(dir)

	os.Exit(code)
}

func newSchedulerEvent(t *testing.T, data interface{}) event.Event {
	t.Helper()
	e := event.New()
	e.SetID("test-event-id")
	e.SetSource("//cloudscheduler.googleapis.com/projects/test/locations/us-central1/jobs/cleanup")
	e.SetType("google.cloud.scheduler.job.v1.executed")
	e.SetTime(time.Now())
	if data != nil {
		if err := e.SetData(event.ApplicationJSON, data); err != nil {
			t.Fatalf("Failed to set event data: %v", err)
		}
	}
	return e
}

func TestGenerateDocumentHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	GenerateDocument(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", response["status"])
	}
	if response["api_version"] != "1.0" {
		t.Errorf("Expected api_version '1.0', got '%v'", response["api_version"])
	}
}

func TestGenerateDocumentInvalidRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/invalid", nil)
	w := httptest.NewRecorder()

	GenerateDocument(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGenerateDocumentGenerate(t *testing.T) {
	body := `{"title":"Cloud Function document","points":["Un","Deux"]}`
	req := httptest.NewRequest("POST", "/api/generate-pdf", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	GenerateDocument(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	filename, _ := response["filename"].(string)
	if _, err := os.Stat(filepath.Join(testOutputDir, filename)); err != nil {
		t.Errorf("Expected %s in output dir: %v", filename, err)
	}
}

func TestCleanupDocuments(t *testing.T) {
	if err := os.MkdirAll(testOutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	old := filepath.Join(testOutputDir, "document-old.pdf")
	if err := os.WriteFile(old, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	// The default age keeps a 3 hour old file
	if err := CleanupDocuments(context.Background(), newSchedulerEvent(t, nil)); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(old); err != nil {
		t.Error("Expected file to survive the default cleanup")
	}

	// A payload can shorten the age
	if err := CleanupDocuments(context.Background(), newSchedulerEvent(t, CleanupEventData{MaxAgeHours: 1})); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old file to be deleted")
	}
}

func TestCleanupDocumentsInvalidJSON(t *testing.T) {
	e := newSchedulerEvent(t, nil)
	e.DataEncoded = []byte(`invalid json`)

	err := CleanupDocuments(context.Background(), e)
	if err == nil {
		t.Fatal("Expected error for invalid JSON data")
	}
	if !strings.Contains(err.Error(), "failed to parse event data") {
		t.Errorf("Expected 'failed to parse event data' error, got: %v", err)
	}
}
