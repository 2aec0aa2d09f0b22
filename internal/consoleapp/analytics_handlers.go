package consoleapp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/leave"
	"github.com/phillip-england/leavedesk/internal/notice"
	"github.com/phillip-england/leavedesk/internal/report"
)

func analyticsFilters(r *http.Request) leave.AnalyticsFilters {
	q := r.URL.Query()
	f := leave.DefaultAnalyticsFilters()
	f.Name = strings.TrimSpace(q.Get("name"))
	f.LeaderName = strings.TrimSpace(q.Get("leader"))
	for _, preset := range leave.RangePresets {
		if q.Get("range") == preset.Value {
			f.Range = preset.Value
		}
	}
	if leave.Order(q.Get("sort")) == leave.OrderAsc {
		f.SortDays = leave.OrderAsc
	}
	return f
}

func (s *Server) analyticsPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	err := ws.analytics.Navigate(r.Context(), pageParam(r), analyticsFilters(r))
	if s.expired(w, r, ws, err) {
		return
	}
	s.renderAnalytics(w, ws)
}

func (s *Server) renderAnalytics(w http.ResponseWriter, ws *workspace) {
	s.render(w, ws, "analytics", http.StatusOK, pageData{
		Title:        "Analytics",
		Active:       "analytics",
		Analytics:    ws.analytics.View(),
		RangePresets: leave.RangePresets,
	})
}

// notifyLeader only tells the user; the API has no notification endpoint.
func (s *Server) notifyLeader(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	for _, row := range ws.analytics.View().Result.Items {
		if row.ID != id {
			continue
		}
		leader := row.LeaderName
		if leader == "" {
			leader = "the leader"
		}
		ws.notices.Notify(notice.Notice{
			Code:     notice.CodeLeaderNotified,
			Severity: notice.SeverityInfo,
			Message:  fmt.Sprintf("Notified %s about %s (%s days).", leader, row.Name, row.TotalDays),
		})
		break
	}
	s.renderAnalytics(w, ws)
}

func (s *Server) exportAnalyticsXLSX(w http.ResponseWriter, r *http.Request) {
	s.exportAnalytics(w, r, report.XLSXContentType, "xlsx", func(out io.Writer, rows []leave.AnalyticsRow, _ string) error {
		return report.WriteXLSX(out, rows)
	})
}

func (s *Server) exportAnalyticsPDF(w http.ResponseWriter, r *http.Request) {
	s.exportAnalytics(w, r, report.PDFContentType, "pdf", func(out io.Writer, rows []leave.AnalyticsRow, title string) error {
		return report.WritePDF(out, title, rows)
	})
}

// exportAnalytics writes the page currently on screen.
func (s *Server) exportAnalytics(w http.ResponseWriter, r *http.Request, contentType, ext string, write func(io.Writer, []leave.AnalyticsRow, string) error) {
	ws := workspaceFrom(r.Context())
	view := ws.analytics.View()
	if !view.HasResult {
		if err := ws.analytics.Load(r.Context()); s.expired(w, r, ws, err) {
			return
		}
		view = ws.analytics.View()
	}

	start, end := leave.DateRange(view.Filters.Range, s.now())
	title := fmt.Sprintf("Analitica %s / %s (pagina %d)", start, end, view.Page)

	var buf bytes.Buffer
	if err := write(&buf, view.Result.Items, title); err != nil {
		s.log.Error("export analytics", zap.String("format", ext), zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"analitica-%d.%s\"", view.Page, ext))
	_, _ = w.Write(buf.Bytes())
}
