// Package consoleapp serves the leave management console: server rendered
// pages in front of the leave REST API, one workspace per browser.
package consoleapp

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/middleware"
	"github.com/phillip-england/leavedesk/internal/security"
	"github.com/phillip-england/leavedesk/internal/session"
)

type Server struct {
	cfg      Config
	log      *zap.Logger
	api      *apiclient.Client
	opts     session.Options
	sessions *session.Registry
	pages    map[string]*template.Template
	now      func() time.Time

	mu         sync.Mutex
	workspaces *expirable.LRU[string, *workspace]
}

func NewServer(cfg Config, log *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var sealer *security.Sealer
	if cfg.SessionSecret != "" {
		var err error
		sealer, err = security.NewSealer(cfg.SessionSecret)
		if err != nil {
			return nil, fmt.Errorf("session secret: %w", err)
		}
	}
	opts := session.DefaultOptions()
	opts.ExpiryDelay = cfg.ExpiryRedirectDelay

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		api:        apiclient.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, log.Named("api")),
		opts:       opts,
		sessions:   session.NewRegistry(cfg.SessionDir, sealer, opts),
		pages:      pages,
		now:        time.Now,
	}
	s.workspaces = expirable.NewLRU[string, *workspace](cfg.MaxWorkspaces, func(id string, _ *workspace) {
		s.sessions.Forget(id)
		log.Debug("workspace evicted", zap.String("session", id))
	}, cfg.IdleTimeout)
	s.sessions.OnOpen(func(id string, _ *session.Store) {
		log.Debug("session opened", zap.String("session", id))
	})
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/assets/app.css", s.appCSSFile)

	r.Group(func(r chi.Router) {
		r.Use(s.withWorkspace)

		r.Get("/", s.root)
		r.Get("/login", s.loginPage)
		r.Post("/login", s.login)
		r.Get("/register", s.registerPage)
		r.Post("/register", s.register)
		r.Post("/logout", s.logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/", s.homePage)
			r.Get("/users", s.usersPage)

			r.Get("/requests", s.requestsPage)
			r.Post("/requests/{id}/approve", s.approveRequest)
			r.Post("/requests/{id}/reject", s.rejectRequest)
			r.Post("/requests/{id}/delete", s.deleteRequest)

			r.Get("/requests/new", s.newRequestPage)
			r.Post("/requests/new", s.createRequest)

			r.Get("/import", s.importPage)
			r.Post("/import/preview", s.previewImport)
			r.Post("/import/submit", s.submitImport)
			r.Post("/import/cancel", s.cancelImport)
			r.Get("/import/template", s.importTemplate)

			r.Get("/analytics", s.analyticsPage)
			r.Post("/analytics/{id}/notify", s.notifyLeader)
			r.Get("/analytics/export.xlsx", s.exportAnalyticsXLSX)
			r.Get("/analytics/export.pdf", s.exportAnalyticsPDF)
		})
	})

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"script-src 'self'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		r,
		middleware.RequestID,
		middleware.AccessLog(s.log.Named("http")),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
	)
}

func Run(ctx context.Context, cfg Config, log *zap.Logger) error {
	s, err := NewServer(cfg, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("console listening", zap.String("addr", cfg.Addr), zap.String("api", cfg.APIBaseURL))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	data, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(data)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if ws.signedIn() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, s.opts.LoginPath, http.StatusSeeOther)
}

// forget drops a browser's workspace so the next request starts clean.
func (s *Server) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces.Remove(id)
	s.sessions.Forget(id)
}
