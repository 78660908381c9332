package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/di"
	"github.com/pep299/pdf-generator-api/internal/logging"
	"github.com/pep299/pdf-generator-api/internal/transport/response"
)

// APIVersion is reported by /health and /api/stats
const APIVersion = "1.0"

// Server holds the HTTP server and its dependencies
type Server struct {
	config    *config.Config
	container *di.Container
	logger    *logging.Logger
	now       func() time.Time
}

// NewServer creates a new HTTP server
func NewServer(container *di.Container) *Server {
	logger := container.Logger
	if logger == nil {
		logger = logging.New(nil)
	}
	return &Server{
		config:    container.Config,
		container: container,
		logger:    logger,
		now:       time.Now,
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowedHandler)

	// Pages
	r.HandleFunc("/", s.indexHandler).Methods("GET")
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/download/{filename}", s.downloadHandler).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/generate-pdf", s.generateHandler).Methods("POST")
	api.HandleFunc("/documents", s.documentsHandler).Methods("GET")
	api.HandleFunc("/stats", s.statsHandler).Methods("GET")
	api.Handle("/cleanup", s.authMiddleware(http.HandlerFunc(s.cleanupHandler))).Methods("POST")

	return r
}

// Handler returns the router wrapped in the middleware chain. CORS and
// logging wrap the router so unmatched routes get them too.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.loggingMiddleware(s.recoveryMiddleware(s.SetupRoutes())))
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteNotFound(w, "Endpoint not found")
}

func (s *Server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteMethodNotAllowed(w, "Method not allowed")
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		s.logger.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// recoveryMiddleware turns panics into a JSON 500
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Errorf("Server error: %v", rec)
				response.WriteInternalError(w, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authMiddleware requires "Authorization: Bearer <CLEANUP_AUTH_TOKEN>" when a
// token is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.config.CleanupAuthToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		expected := []byte("Bearer " + token)
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			s.logger.Warnf("Unauthorized request to %s", r.URL.Path)
			response.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
