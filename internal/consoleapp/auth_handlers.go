package consoleapp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/auth"
	"github.com/phillip-england/leavedesk/internal/notice"
)

// loginPage never shows the form to a signed in browser, so a late expiry
// redirect from an old tab lands back in the console.
func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.authPage(w, r, auth.ModeLogin)
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.authPage(w, r, auth.ModeRegister)
}

func (s *Server) authPage(w http.ResponseWriter, r *http.Request, mode auth.Mode) {
	ws := workspaceFrom(r.Context())
	if ws.signedIn() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	form := ws.authForm()
	if form.Mode != mode {
		form = form.Toggle()
		ws.setAuthForm(form)
	}
	s.render(w, ws, "login", http.StatusOK, pageData{Title: title(mode), Form: form})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		s.authFailed(w, ws, auth.NewForm(auth.ModeLogin), "Invalid form submission")
		return
	}
	form := auth.NewForm(auth.ModeLogin).Submit()
	ws.setAuthForm(form)

	profile, err := ws.auth.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		msg := "Invalid email or password"
		if !errors.Is(err, auth.ErrAuthentication) {
			msg = "Authentication service unavailable"
		}
		s.authFailed(w, ws, form, msg)
		return
	}
	ws.setAuthForm(form.Succeed())
	s.log.Info("signed in", zap.String("session", ws.id), zap.String("uid", profile.UID))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		s.authFailed(w, ws, auth.NewForm(auth.ModeRegister), "Invalid form submission")
		return
	}
	form := auth.NewForm(auth.ModeRegister).Submit()
	ws.setAuthForm(form)

	if err := ws.auth.Register(r.Context(), r.FormValue("name"), r.FormValue("email"), r.FormValue("password")); err != nil {
		s.authFailed(w, ws, form, "Unable to create the account")
		return
	}
	ws.setAuthForm(form.Succeed())
	ws.notices.Notify(notice.Notice{
		Code:     notice.CodeRegistered,
		Severity: notice.SeveritySuccess,
		Message:  "Account created. Sign in to continue.",
	})
	http.Redirect(w, r, s.opts.LoginPath, http.StatusSeeOther)
}

func (s *Server) authFailed(w http.ResponseWriter, ws *workspace, form auth.Form, msg string) {
	form = form.Fail(msg)
	ws.setAuthForm(form)
	s.render(w, ws, "login", http.StatusUnauthorized, pageData{Title: title(form.Mode), Form: form})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	nav, err := ws.auth.Logout()
	if err != nil {
		s.log.Warn("logout", zap.String("session", ws.id), zap.Error(err))
	}
	s.forget(ws.id)
	if nav.Path == "" {
		nav.Path = s.opts.LogoutPath
	}
	http.Redirect(w, r, nav.Path, http.StatusSeeOther)
}

func title(mode auth.Mode) string {
	if mode == auth.ModeRegister {
		return "Create account"
	}
	return "Sign in"
}
