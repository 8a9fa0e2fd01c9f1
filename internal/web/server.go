package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/logger"
	"github.com/hpungsan/autord/internal/metrics"
	"github.com/hpungsan/autord/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// maxBodyBytes bounds request bodies of the preview endpoints.
const maxBodyBytes = 1 << 20

// Deps are the services behind the web UI.
type Deps struct {
	Templates *ops.Service
	Exporter  *export.Exporter
	Previews  *export.Previews
	Config    *config.Config
	Log       *slog.Logger
}

// NewHandlers wires the route handlers over deps.
func NewHandlers(deps Deps, version string) *Handlers {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}

	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	previews := deps.Previews
	if previews == nil {
		previews = export.NewPreviews(cfg.PreviewTTL())
	}

	return &Handlers{
		svc:      deps.Templates,
		exp:      deps.Exporter,
		previews: previews,
		cfg:      cfg,
		log:      log,
		renderer: NewRenderer(templateSub, version, log),
	}
}

// Routes returns the UI mux wrapped with security headers and request metrics.
func (h *Handlers) Routes() http.Handler {
	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/templates", http.StatusFound)
	})
	mux.HandleFunc("GET /templates", h.HandleList)
	mux.HandleFunc("GET /templates/{id}", h.HandleDetail)
	mux.HandleFunc("GET /templates/{id}/download", h.HandleDownload)
	mux.HandleFunc("DELETE /templates/{id}", h.HandleDelete)
	mux.HandleFunc("POST /templates/{id}/select", h.HandleSelect)
	mux.HandleFunc("POST /slides/preview", h.HandleSlidePreview)
	mux.HandleFunc("POST /briefs/preview", h.HandleBriefPreview)
	mux.HandleFunc("GET /previews/{handle}", h.HandlePreviewDownload)
	mux.HandleFunc("DELETE /previews/{handle}", h.HandlePreviewRelease)
	mux.Handle("GET /metrics", metrics.Handler())

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return instrument(securityHeaders(mux))
}

// NewServer creates and configures the HTTP server for the autord web UI.
func NewServer(deps Deps, version, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewHandlers(deps, version).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
// Thumbnails are PNG data URLs, so images may load from data:.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument counts requests by method, matched route pattern and status.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(r.Method, route, rec.status)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("autord UI running", slog.String("url", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
