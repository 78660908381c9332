// Package cloudfunctions exposes the PDF generator as Google Cloud Functions.
package cloudfunctions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/di"
	"github.com/pep299/pdf-generator-api/internal/handlers"
	"github.com/pep299/pdf-generator-api/internal/logging"
	"github.com/pep299/pdf-generator-api/internal/transport/response"
)

func init() {
	functions.HTTP("GenerateDocument", GenerateDocument)
	functions.CloudEvent("CleanupDocuments", CleanupDocuments)
}

// CleanupEventData is the optional JSON payload of a cleanup event
type CleanupEventData struct {
	MaxAgeHours int `json:"maxAgeHours,omitempty"`
}

var (
	instanceOnce sync.Once
	instance     *di.Container
	handler      http.Handler
	instanceErr  error
)

// getInstance builds the container once per function instance
func getInstance() (*di.Container, http.Handler, error) {
	instanceOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			instanceErr = fmt.Errorf("loading configuration: %w", err)
			return
		}

		container, err := di.NewContainer(context.Background(), cfg, logging.New(os.Stdout))
		if err != nil {
			instanceErr = fmt.Errorf("creating container: %w", err)
			return
		}

		instance = container
		handler = handlers.NewServer(container).Handler()
	})
	return instance, handler, instanceErr
}

// GenerateDocument serves the full HTTP API
func GenerateDocument(w http.ResponseWriter, r *http.Request) {
	_, h, err := getInstance()
	if err != nil {
		logger := logging.New(funcframework.LogWriter(r.Context()))
		logger.Errorf("Failed to initialize: %v", err)
		response.WriteInternalError(w, "Internal server error")
		return
	}
	h.ServeHTTP(w, r)
}

// CleanupDocuments deletes old documents, typically triggered by Cloud Scheduler
func CleanupDocuments(ctx context.Context, e event.Event) error {
	logger := logging.New(funcframework.LogWriter(ctx))

	container, _, err := getInstance()
	if err != nil {
		return err
	}

	maxAge := container.Config.CleanupMaxAge()
	if len(e.Data()) > 0 {
		var data CleanupEventData
		if err := json.Unmarshal(e.Data(), &data); err != nil {
			return fmt.Errorf("failed to parse event data: %w", err)
		}
		if data.MaxAgeHours > 0 {
			maxAge = time.Duration(data.MaxAgeHours) * time.Hour
		}
	}

	logger.Infof("Cleanup triggered by event %s from %s", e.ID(), e.Source())
	deleted, err := container.Files.Cleanup(ctx, maxAge, time.Now())
	if err != nil {
		logger.Errorf("Cleanup failed: %v", err)
		return err
	}
	logger.Infof("Cleanup event %s: %d old files deleted", e.ID(), deleted)
	return nil
}
