package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
	appweb "ledger/web"
)

// ReadyFunc reports whether the storage behind the ledger answers.
type ReadyFunc func(ctx context.Context) error

type Options struct {
	Ready     ReadyFunc
	Logger    *applog.Logger
	RateLimit ratelimit.Config
	// TrustedProxies are CIDRs added to the private ranges whose
	// X-Forwarded-For is honoured.
	TrustedProxies []string
	// Now overrides the clock used for form defaults, for tests.
	Now func() time.Time
}

// Server is the HTMX web UI over a LedgerService.
type Server struct {
	http.Server

	ledger    *services.LedgerService
	ready     ReadyFunc
	templates *template.Template
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	logger    *applog.Logger
	now       func() time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(addr string, ledger *services.LedgerService, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	t, err := template.New("").Funcs(templateFuncs(ledger.Location())).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		ledger:    ledger,
		ready:     opts.Ready,
		templates: t,
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		detector:  security.NewDetector(),
		logger:    logger,
		now:       now,
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /partials/ledger", s.handleLedgerPanel)
	mux.HandleFunc("GET /charts", s.handleCharts)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /keypad/evaluate", s.handleKeypad)

	mux.HandleFunc("POST /settle", s.handleSettle)
	mux.HandleFunc("GET /settlements", s.handleSettlements)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /settlements/{id}/export", s.handleSettlementExport)

	limit := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit, http.MethodPost, http.MethodDelete)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// RunCleanup prunes idle rate-limit entries until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, interval time.Duration) error {
	return s.limiter.Run(ctx, interval)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "請求過於頻繁，請稍後再試").
		TriggerErrorNotification("請求過於頻繁，請稍後再試").
		Write(w)
}

func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"currency":  formatCurrency,
		"num":       formatNum,
		"signed":    signedAmount,
		"category":  core.LookupCategory,
		"typeLabel": core.TypeLabel,
		"day":       dayLabel,
		"width":     barWidth,
		"pct":       func(p float64) string { return fmt.Sprintf("%.0f", p) },
		"clock":     func(t time.Time) string { return t.In(loc).Format("15:04") },
		"stamp":     func(t time.Time) string { return t.In(loc).Format("2006/01/02 15:04") },
		"rangeDay":  func(t time.Time) string { return t.In(loc).Format("2006-01-02") },
		"keypadKeys": func() []string {
			return []string{"7", "8", "9", "/", "4", "5", "6", "*", "1", "2", "3", "-", "0", ".", "=", "+", "del", "clear"}
		},
	}
}
