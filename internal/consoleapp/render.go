package consoleapp

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/auth"
	"github.com/phillip-england/leavedesk/internal/ingest"
	"github.com/phillip-england/leavedesk/internal/leave"
	"github.com/phillip-england/leavedesk/internal/listing"
	"github.com/phillip-england/leavedesk/internal/notice"
	"github.com/phillip-england/leavedesk/internal/session"
)

//go:embed templates/*.html assets/app.css
var templatesFS embed.FS

var pageFiles = []string{
	"login", "expired", "home", "users", "requests", "new_request", "import", "analytics",
}

type refresh struct {
	Seconds int
	URL     string
}

type pageData struct {
	Title       string
	Active      string
	DisplayName string
	SignedIn    bool
	Notices     []notice.Notice
	Refresh     *refresh

	Form auth.Form

	Users     listing.View[leave.User, noFilters]
	Requests  listing.View[leave.Request, noFilters]
	Analytics listing.View[leave.AnalyticsRow, leave.AnalyticsFilters]

	Draft      leave.NewRequest
	LeaveTypes []leave.Type

	Preview    ingest.Preview
	HasPending bool
	Columns    []string

	RangePresets []leave.RangePreset
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"percent":      func(f float64) int { return int(math.Round(f * 100)) },
		"analyticsURL": analyticsURL,
		"sortBy": func(f leave.AnalyticsFilters) leave.AnalyticsFilters {
			if f.SortDays == leave.OrderAsc {
				f.SortDays = leave.OrderDesc
			} else {
				f.SortDays = leave.OrderAsc
			}
			return f
		},
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func analyticsURL(f leave.AnalyticsFilters, page int) string {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.LeaderName != "" {
		q.Set("leader", f.LeaderName)
	}
	q.Set("range", f.Range)
	q.Set("sort", string(f.SortDays))
	q.Set("page", strconv.Itoa(page))
	return "/admin/analytics?" + q.Encode()
}

func (s *Server) render(w http.ResponseWriter, ws *workspace, page string, status int, data pageData) {
	if snap, ok := ws.store.Get(); ok {
		data.SignedIn = true
		data.DisplayName = snap.DisplayName
	}
	data.Notices = append(data.Notices, ws.notices.Drain()...)

	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "template render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderExpired shows the expiry notice and sends the browser back to the
// login page once the delay has passed.
func (s *Server) renderExpired(w http.ResponseWriter, _ *http.Request, ws *workspace, nav session.Navigation) {
	s.render(w, ws, "expired", http.StatusOK, pageData{
		Title:   "Session expired",
		Refresh: &refresh{Seconds: int(math.Ceil(nav.After.Seconds())), URL: nav.Path},
	})
}

// expired reports whether err ended the session and, if so, renders the
// expiry page.
func (s *Server) expired(w http.ResponseWriter, r *http.Request, ws *workspace, err error) bool {
	if !errors.Is(err, listing.ErrSessionExpired) {
		return false
	}
	nav := session.Navigation{Path: s.opts.LoginPath, After: s.opts.ExpiryDelay}
	if pending := ws.takeExpiry(); pending != nil {
		nav = *pending
	}
	s.renderExpired(w, r, ws, nav)
	return true
}
