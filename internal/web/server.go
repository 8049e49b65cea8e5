package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// navigateHash allows the dropdown's inline onchange handler
// (dropdown.NavigateScript) and nothing else.
const navigateHash = "'sha256-h5+stp3uYs/0k6XDnRKKnL3yJ74cRxxYT1etIlomGlQ='"

const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-hashes' " + navigateHash + "; style-src 'self'"

// NewServer creates and configures the HTTP server for the tagdrop host pages.
func NewServer(db *sql.DB, cfg *config.Config, svc *dropdown.Service, log *zap.Logger, version, bind string, port int) (*http.Server, error) {
	handler, err := NewHandler(db, cfg, svc, log, version)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// NewHandler builds the routed, rate limited handler tree.
func NewHandler(db *sql.DB, cfg *config.Config, svc *dropdown.Service, log *zap.Logger, version string) (http.Handler, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log = logger.Component(log, "web")

	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		svc:      svc,
		renderer: NewRenderer(templateSub, version, log),
		log:      log,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("GET /dropdown", h.HandleDropdown)
	mux.HandleFunc("GET /api/taxonomies", h.HandleTaxonomies)
	mux.HandleFunc("GET /{base}/{slug}/{$}", h.HandleArchive)

	// Static files are flat, so a single segment pattern keeps clear of the
	// archive route.
	mux.Handle("GET /static/{file}", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	var limiter *rate.Limiter
	if cfg.WebRateLimit > 0 {
		burst := cfg.WebRateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.WebRateLimit), burst)
	}

	return securityHeaders(rateLimit(limiter, log, logRequests(log, mux))), nil
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// rateLimit rejects requests with 429 once the shared token bucket is empty.
// A nil limiter disables the check.
func rateLimit(limiter *rate.Limiter, log *zap.Logger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			log.Debug("rate limited",
				zap.String(logger.FieldMethod, r.Method),
				zap.String(logger.FieldPath, r.URL.Path))
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
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

// logRequests logs every request at debug level.
func logRequests(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request",
			zap.String(logger.FieldMethod, r.Method),
			zap.String(logger.FieldPath, r.URL.Path),
			zap.Int(logger.FieldStatus, rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *zap.Logger) error {
	log = logger.Component(log, "web")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("tagdrop host running", zap.String(logger.FieldAddress, "http://"+srv.Addr))

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
