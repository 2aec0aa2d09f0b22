package consoleapp

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/auth"
	"github.com/phillip-england/leavedesk/internal/ingest"
	"github.com/phillip-england/leavedesk/internal/leave"
	"github.com/phillip-england/leavedesk/internal/listing"
	"github.com/phillip-england/leavedesk/internal/notice"
	"github.com/phillip-england/leavedesk/internal/session"
)

const sessionCookieName = "leavedesk_sid"

type noFilters struct{}

type pendingImport struct {
	upload  ingest.Upload
	preview ingest.Preview
}

// workspace is everything one browser's console holds between requests.
type workspace struct {
	id      string
	store   *session.Store
	notices *notice.Board

	auth     *auth.Service
	leave    *leave.Service
	importer *ingest.Importer
	mutator  *listing.Mutator

	users     *listing.Controller[leave.User, noFilters]
	requests  *listing.Controller[leave.Request, noFilters]
	analytics *listing.Controller[leave.AnalyticsRow, leave.AnalyticsFilters]

	mu      sync.Mutex
	form    auth.Form
	expiry  *session.Navigation
	pending *pendingImport
}

func newWorkspace(id string, store *session.Store, api *apiclient.Client, log *zap.Logger) *workspace {
	client := api.WithCredentials(store)
	board := &notice.Board{}
	policy := listing.NewExpiryPolicy(store, board, log)
	leaves := leave.NewService(client)

	ws := &workspace{
		id:       id,
		store:    store,
		notices:  board,
		auth:     auth.NewService(client, store, log),
		leave:    leaves,
		importer: ingest.NewImporter(client),
		mutator:  listing.NewMutator(policy, board),
		form:     auth.NewForm(auth.ModeLogin),
	}
	ws.users = listing.NewController(func(ctx context.Context, page int, _ noFilters) (listing.Page[leave.User], error) {
		return leaves.Users(ctx, page)
	}, noFilters{}, policy, board)
	ws.requests = listing.NewController(func(ctx context.Context, page int, _ noFilters) (listing.Page[leave.Request], error) {
		return leaves.Requests(ctx, page)
	}, noFilters{}, policy, board)
	ws.analytics = listing.NewController(leaves.Analytics, leave.DefaultAnalyticsFilters(), policy, board)

	store.Subscribe(ws.onSessionEvent)
	store.Subscribe(func(ev session.Event) {
		log.Info("session event",
			zap.String("session", id),
			zap.String("kind", string(ev.Kind)),
			zap.String("reason", string(ev.Reason)),
		)
	})
	return ws
}

func (ws *workspace) onSessionEvent(ev session.Event) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	switch ev.Kind {
	case session.EventCleared:
		ws.pending = nil
		ws.form = auth.NewForm(auth.ModeLogin)
		if ev.Reason == session.ReasonExpired && ev.Navigate != nil {
			nav := *ev.Navigate
			ws.expiry = &nav
		}
	case session.EventSet:
		ws.expiry = nil
	}
}

// takeExpiry returns the pending expiry navigation once.
func (ws *workspace) takeExpiry() *session.Navigation {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	nav := ws.expiry
	ws.expiry = nil
	return nav
}

func (ws *workspace) authForm() auth.Form {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.form
}

func (ws *workspace) setAuthForm(f auth.Form) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.form = f
}

func (ws *workspace) pendingImport() *pendingImport {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.pending
}

func (ws *workspace) setPendingImport(p *pendingImport) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.pending = p
}

func (ws *workspace) signedIn() bool {
	_, ok := ws.store.Credential()
	return ok
}

type workspaceKey struct{}

func workspaceFrom(ctx context.Context) *workspace {
	ws, _ := ctx.Value(workspaceKey{}).(*workspace)
	return ws
}

// withWorkspace resolves the browser's workspace from its cookie, minting a
// new id for browsers that have none.
func (s *Server) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(sessionCookieName); err == nil {
			id = c.Value
		}
		store, err := s.sessions.Open(id)
		if err != nil {
			id = s.sessions.NewID()
			store, err = s.sessions.Open(id)
			if err != nil {
				s.log.Error("open session", zap.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Production() || r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   60 * 60 * 24 * 30,
			})
		}
		ws := s.workspace(id, store)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey{}, ws)))
	})
}

// workspace returns the browser's workspace and renews its idle deadline.
func (s *Server) workspace(id string, store *session.Store) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces.Get(id)
	if !ok || ws.store != store {
		ws = newWorkspace(id, store, s.api, s.log)
	}
	s.workspaces.Add(id, ws)
	return ws
}

// requireSession lets signed in browsers through. A browser whose session
// just expired gets the expiry notice and a delayed return to the login
// page; any other browser goes straight to login.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		if ws.signedIn() {
			next.ServeHTTP(w, r)
			return
		}
		if nav := ws.takeExpiry(); nav != nil {
			s.renderExpired(w, r, ws, *nav)
			return
		}
		http.Redirect(w, r, s.opts.LoginPath, http.StatusSeeOther)
	})
}
