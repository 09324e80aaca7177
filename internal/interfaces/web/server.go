// Package web serves the status page and the manual run button.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/remimse/tennis-bots/internal/application/usecases"
	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/internaltypes"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Booker is the slice of usecases.Runner the UI drives.
type Booker interface {
	BookDate(ctx context.Context, target time.Time, trigger string) (booking.Run, error)
	Busy() bool
	Today() time.Time
}

type Server struct {
	Sessions *SessionManager
	Admin    Admin
	Runner   Booker
	Runs     booking.RunRecorder
	Prefs    booking.Preferences
	NextRun  func(now time.Time) time.Time // optional
	Logger   *slog.Logger

	// BaseCtx outlives requests; manual runs use it so they are not cut off
	// when the browser that clicked "run" goes away.
	BaseCtx context.Context
}

type tmplData struct {
	Title  string
	User   string
	Flash  string
	Status *statusData
}

type statusData struct {
	Now        time.Time
	NextRun    time.Time
	Target     time.Time
	BooksToday bool
	Window     string
	Courts     []string
	Busy       bool
	Runs       []booking.Run
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.Handle("/run", s.requireAuth(http.HandlerFunc(s.handleRun)))
	mux.Handle("/", s.requireAuth(http.HandlerFunc(s.handleStatus)))
	return s.logRequests(mux)
}

type ctxKeyUser struct{}

func userFromContext(ctx context.Context) string {
	u, _ := ctx.Value(ctxKeyUser{}).(string)
	return u
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.Sessions.User(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser{}, u)))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, http.StatusOK, "templates/login.html", tmplData{Title: "Login"})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		if err := s.Admin.Authenticate(username, r.FormValue("password")); err != nil {
			s.logger().Warn("admin login rejected", "user", username, "remote", r.RemoteAddr)
			s.render(w, http.StatusUnauthorized, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Sessions.SetUser(w, r, username); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var runs []booking.Run
	if s.Runs != nil {
		var err error
		if runs, err = s.Runs.Recent(ctx, 20); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	now := time.Now()
	today := s.Runner.Today()
	st := &statusData{
		Now:        now.In(today.Location()),
		Target:     booking.TargetDate(today, s.Prefs),
		BooksToday: booking.ShouldBookToday(today, s.Prefs),
		Window:     s.Prefs.Window.String(),
		Courts:     s.Prefs.ResourcePriority,
		Busy:       s.Runner.Busy(),
		Runs:       runs,
	}
	if s.NextRun != nil {
		st.NextRun = s.NextRun(now)
	}

	var flash string
	switch r.URL.Query().Get("run") {
	case "started":
		flash = "Booking run started."
	case "busy":
		flash = "A booking run is already in progress."
	}
	s.render(w, http.StatusOK, "templates/status.html", tmplData{
		Title:  "Status",
		User:   userFromContext(r.Context()),
		Flash:  flash,
		Status: st,
	})
}

// handleRun starts a manual run for today's target date in the background.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Runner.Busy() {
		http.Redirect(w, r, "/?run=busy", http.StatusSeeOther)
		return
	}
	target := booking.TargetDate(s.Runner.Today(), s.Prefs)
	user := userFromContext(r.Context())
	ctx := s.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	log := s.logger()
	go func() {
		run, err := s.Runner.BookDate(ctx, target, usecases.TriggerManual)
		switch {
		case errors.Is(err, internaltypes.ErrRunInProgress):
			log.Info("manual run skipped, another run is in progress", "user", user)
		case err != nil:
			log.Error("manual run failed", "user", user, "run_id", run.ID, "err", err)
		default:
			log.Info("manual run finished", "user", user, "run_id", run.ID, "outcome", run.Outcome.String())
		}
	}()
	http.Redirect(w, r, "/?run=started", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, code int, name string, data tmplData) {
	t, err := template.ParseFS(templatesFS, "templates/base.html", name)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.logger().Error("render", "template", name, "err", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger().Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Start serves h on addr until ctx is done, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("status ui listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
