package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/pep299/pdf-generator-api/internal/cache"
	"github.com/pep299/pdf-generator-api/internal/document"
	"github.com/pep299/pdf-generator-api/internal/storage"
	"github.com/pep299/pdf-generator-api/internal/transport/response"
)

// GenerateResponse is returned by a successful /api/generate-pdf call
type GenerateResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Filename       string `json:"filename"`
	DownloadURL    string `json:"downloadUrl"`
	Size           int64  `json:"size"`
	GenerationTime int    `json:"generationTime"`
}

// DocumentItem is one entry of /api/documents
type DocumentItem struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
	DownloadURL string    `json:"downloadUrl"`
}

// StatsResponse is returned by /api/stats
type StatsResponse struct {
	storage.Stats
	APIVersion       string       `json:"api_version"`
	APIKeyConfigured bool         `json:"api_key_configured"`
	StorageBackend   string       `json:"storage_backend"`
	PDFEngine        string       `json:"pdf_engine"`
	ContentCache     *cache.Stats `json:"content_cache,omitempty"`
}

func downloadURL(filename string) string {
	return "/download/" + filename
}

// indexHandler serves the dashboard page
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(filepath.Join(s.config.TemplatesDir, "dashboard.html"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		s.logger.Errorf("Dashboard error: %v", err)
		fmt.Fprintf(w, "<h1>PDF Generator API</h1><p>Dashboard not found. Make sure dashboard.html is in templates/ folder.</p><p>Error: %s</p>",
			html.EscapeString(err.Error()))
		return
	}
	w.Write(page)
}

// healthHandler handles health check requests
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"api_version":        APIVersion,
		"timestamp":          s.now().Format(time.RFC3339),
		"api_key_configured": s.config.APIKeyConfigured(),
	})
}

// generateHandler generates a document from a JSON request
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	var req document.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warnf("Request body too large: %v", err)
			response.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		s.logger.Warnf("Invalid JSON body: %v", err)
		response.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	result, err := s.container.Generator.Generate(r.Context(), req)
	if err != nil {
		var validationErr *document.ValidationError
		if errors.As(err, &validationErr) {
			response.WriteBadRequest(w, validationErr.Message)
			return
		}
		s.logger.Errorf("PDF generation error: %v", err)
		response.WriteInternalError(w, "PDF generation failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, GenerateResponse{
		Success:        true,
		Message:        "PDF generated successfully",
		Filename:       result.Filename,
		DownloadURL:    downloadURL(result.Filename),
		Size:           result.Size,
		GenerationTime: int(result.Duration.Seconds()),
	})
}

// downloadHandler streams a stored document as an attachment
func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if err := storage.ValidateName(filename); err != nil {
		s.logger.Warnf("Rejected download name %q", filename)
		response.WriteBadRequest(w, "Invalid filename")
		return
	}

	rc, info, err := s.container.Files.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("File not found: %s", filename)
			response.WriteNotFound(w, "File not found")
			return
		}
		s.logger.Errorf("Download error: %v", err)
		response.WriteInternalError(w, "Download failed")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	s.logger.Infof("File downloaded: %s", filename)
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, filename, info.ModTime, rs)
		return
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(info.Size))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warnf("Download of %s interrupted: %v", filename, err)
	}
}

// documentsHandler lists stored documents, newest first
func (s *Server) documentsHandler(w http.ResponseWriter, r *http.Request) {
	files, err := s.container.Files.List(r.Context())
	if err != nil {
		s.logger.Errorf("Listing documents failed: %v", err)
		response.WriteInternalError(w, "Failed to list documents")
		return
	}

	documents := make([]DocumentItem, 0, len(files))
	for _, f := range files {
		documents = append(documents, DocumentItem{
			Filename:    f.Name,
			Size:        f.Size,
			Modified:    f.ModTime,
			DownloadURL: downloadURL(f.Name),
		})
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	})
}

// statsHandler returns storage and runtime statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.container.Files.Stats(ctx, s.now())
	if err != nil {
		s.logger.Errorf("Stats error: %v", err)
		response.WriteInternalError(w, "Failed to compute statistics")
		return
	}

	resp := StatsResponse{
		Stats:            *stats,
		APIVersion:       APIVersion,
		APIKeyConfigured: s.config.APIKeyConfigured(),
		StorageBackend:   s.config.StorageBackend,
	}
	if s.container.Converter != nil {
		resp.PDFEngine = s.container.Converter.Name()
	}
	if s.container.ContentCache != nil {
		if cacheStats, err := s.container.ContentCache.GetStats(ctx); err == nil {
			resp.ContentCache = cacheStats
		}
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

// cleanupHandler deletes documents older than the configured age
func (s *Server) cleanupHandler(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.container.Files.Cleanup(r.Context(), s.config.CleanupMaxAge(), s.now())
	if err != nil {
		s.logger.Errorf("Cleanup error: %v", err)
		response.WriteInternalError(w, "Cleanup failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d old files deleted", deleted),
		"success": true,
	})
}
