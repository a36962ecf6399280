package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
	"github.com/JakeFAU/page-analyzer/internal/logging"
	"github.com/JakeFAU/page-analyzer/internal/metrics"
)

// PageInspector fetches a page and extracts its signals.
type PageInspector interface {
	FetchAndExtract(ctx context.Context, url string) (analyzer.ExtractionResult, error)
}

// Options tunes the Server. Zero values fall back to defaults.
type Options struct {
	// SecretKey signs the flash cookie. An empty key signs with a random per-process key.
	SecretKey string
	// RequestTimeout bounds each request, including the page fetch behind a check.
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the repository and inspector.
type Server struct {
	router    chi.Router
	repo      analyzer.Repository
	inspector PageInspector
	flashes   *flashStore
	views     *views
	logger    *zap.Logger
}

const defaultRequestTimeout = 60 * time.Second

// NewServer constructs a Server with middleware and routes.
func NewServer(
	repo analyzer.Repository,
	inspector PageInspector,
	opts Options,
	logger *zap.Logger,
) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	views, err := loadViews()
	if err != nil {
		return nil, err
	}
	if opts.SecretKey == "" {
		logger.Warn("no secret key configured; flash cookies will not survive a restart")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	metrics.Init()

	s := &Server{
		repo:      repo,
		inspector: inspector,
		flashes:   newFlashStore(opts.SecretKey),
		views:     views,
		logger:    logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(logger))
	r.Use(loggingMiddleware)
	r.Use(recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(opts.RequestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", s.index)
	r.Route("/urls", func(r chi.Router) {
		r.Get("/", s.listURLs)
		r.Post("/", s.createURL)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.showURL)
			r.Post("/checks", s.createCheck)
		})
	})
	r.NotFound(s.notFound)

	s.router = r
	return s, nil
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("readiness check failed", zap.Error(err))
		writeText(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeText(w, http.StatusOK, "ready")
}

func requestIDMiddleware(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			ctx = logging.WithContext(ctx, base.With(zap.String("request_id", reqID)))
			w.Header().Set("X-Request-ID", reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context(), nil).Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context(), nil).Error("panic recovered", zap.Any("error", rec))
				writeText(w, http.StatusInternalServerError, "internal server error")
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

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg + "\n"))
}
