package consoleapp

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phillip-england/leavedesk/internal/leave"
	"github.com/phillip-england/leavedesk/internal/listing"
	"github.com/phillip-england/leavedesk/internal/notice"
)

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	s.render(w, ws, "home", http.StatusOK, pageData{Title: "Dashboard", Active: "home"})
}

func (s *Server) usersPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.users.SetPage(r.Context(), pageParam(r)); s.expired(w, r, ws, err) {
		return
	}
	s.render(w, ws, "users", http.StatusOK, pageData{Title: "Users", Active: "users", Users: ws.users.View()})
}

func (s *Server) requestsPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.requests.SetPage(r.Context(), pageParam(r)); s.expired(w, r, ws, err) {
		return
	}
	s.renderRequests(w, ws)
}

func (s *Server) renderRequests(w http.ResponseWriter, ws *workspace) {
	s.render(w, ws, "requests", http.StatusOK, pageData{
		Title:    "Leave requests",
		Active:   "requests",
		Requests: ws.requests.View(),
	})
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	s.mutateRequest(w, r, listing.ActionApprove, func(ctx context.Context, ws *workspace, id int64) error {
		return ws.leave.Approve(ctx, id)
	})
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	s.mutateRequest(w, r, listing.ActionReject, func(ctx context.Context, ws *workspace, id int64) error {
		return ws.leave.Reject(ctx, id)
	})
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	s.mutateRequest(w, r, listing.ActionDelete, func(ctx context.Context, ws *workspace, id int64) error {
		return ws.leave.Delete(ctx, id)
	})
}

// mutateRequest runs one action against a leave request and renders the
// list as it stands afterwards: refreshed on success, untouched on failure.
func (s *Server) mutateRequest(w http.ResponseWriter, r *http.Request, action listing.Action, op func(context.Context, *workspace, int64) error) {
	ws := workspaceFrom(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	err = ws.requests.Mutate(r.Context(), action, func(ctx context.Context) error {
		return op(ctx, ws, id)
	})
	if s.expired(w, r, ws, err) {
		return
	}
	s.renderRequests(w, ws)
}

func (s *Server) newRequestPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	s.renderNewRequest(w, ws, http.StatusOK, emptyDraft())
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	draft := leave.NewRequest{
		StartDate: r.FormValue("start_date"),
		EndDate:   r.FormValue("end_date"),
		Notes:     r.FormValue("notes"),
		LeaveType: leave.Type(r.FormValue("leave_type")),
	}.Normalize()

	if err := draft.Validate(); err != nil {
		ws.notices.Notify(notice.Notice{Code: notice.CodeInvalidInput, Severity: notice.SeverityError, Message: err.Error()})
		s.renderNewRequest(w, ws, http.StatusUnprocessableEntity, draft)
		return
	}

	err := ws.mutator.Do(r.Context(), listing.ActionSubmit, func(ctx context.Context) error {
		return ws.leave.Create(ctx, draft)
	})
	switch {
	case s.expired(w, r, ws, err):
	case err != nil:
		s.renderNewRequest(w, ws, http.StatusOK, draft)
	default:
		s.renderNewRequest(w, ws, http.StatusOK, emptyDraft())
	}
}

func (s *Server) renderNewRequest(w http.ResponseWriter, ws *workspace, status int, draft leave.NewRequest) {
	s.render(w, ws, "new_request", status, pageData{
		Title:      "New leave request",
		Active:     "new",
		Draft:      draft,
		LeaveTypes: leave.Types,
	})
}

func emptyDraft() leave.NewRequest {
	return leave.NewRequest{LeaveType: leave.TypeVacation}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
