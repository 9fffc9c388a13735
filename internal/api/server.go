package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/OptimNow/my-scraper/internal/config"
	"github.com/OptimNow/my-scraper/internal/extract"
	"github.com/OptimNow/my-scraper/internal/pipeline"
)

// Scraper is the subset of the pipeline runner the handlers need.
type Scraper interface {
	RunBatch(ctx context.Context, limit int) (pipeline.Report, error)
	RunOne(ctx context.Context, pageURL string) (extract.Record, error)
}

// Batch runs pace themselves between fetches, so the request budget has to
// cover the whole sequential walk of the site.
const scrapeTimeout = 15 * time.Minute

// Server wires HTTP handlers to the scrape pipeline.
type Server struct {
	router  chi.Router
	scraper Scraper
	cfg     config.Config
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(scraper Scraper, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		scraper: scraper,
		cfg:     cfg,
		logger:  logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(scrapeTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scrape", s.scrapeBatch)
		r.Post("/scrape/page", s.scrapePage)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The pipeline holds no warm state; readiness tracks liveness.
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

type scrapeBatchRequest struct {
	Limit int `json:"limit"`
}

type scrapePageRequest struct {
	URL string `json:"url"`
}

func (s *Server) scrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req scrapeBatchRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	if req.Limit < 0 {
		writeError(s.logger, w, http.StatusBadRequest, "limit must be >= 0")
		return
	}
	report, err := s.scraper.RunBatch(r.Context(), req.Limit)
	if err != nil {
		s.logger.Error("batch scrape failed", zap.Error(err))
		writeError(s.logger, w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, report)
}

func (s *Server) scrapePage(w http.ResponseWriter, r *http.Request) {
	var req scrapePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(s.logger, w, http.StatusBadRequest, "missing url")
		return
	}
	u, err := url.Parse(req.URL)
	if err != nil || !u.IsAbs() {
		writeError(s.logger, w, http.StatusBadRequest, "url must be absolute")
		return
	}
	rec, err := s.scraper.RunOne(r.Context(), req.URL)
	if err != nil {
		s.logger.Warn("page scrape failed", zap.String("url", req.URL), zap.Error(err))
		writeError(s.logger, w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, rec)
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(s.logger, w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
