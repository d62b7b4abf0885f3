// Package server assembles the ClientSync HTTP API.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/clientsync/auth"
	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/emailgen"
	"github.com/diewo77/clientsync/internal/handlers"
	"github.com/diewo77/clientsync/internal/mailer"
	"github.com/diewo77/clientsync/internal/services"
)

// Deps are the collaborators the router needs. Generator and Mailer may be
// left nil; the email endpoints then report the provider as unconfigured.
type Deps struct {
	DB        *gorm.DB
	Service   *services.DashboardService
	Generator *emailgen.Generator
	Mailer    mailer.Sender
	FromEmail string
	AvatarDir string
	AvatarURL string
	Log       *zap.Logger
}

// App is the root handler with every route mounted.
type App struct {
	mux  *http.ServeMux
	deps Deps
	log  *zap.Logger
}

// New builds the application handler. auth.Middleware runs for every
// request so public routes can still see an optional session.
func New(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Generator == nil {
		d.Generator = emailgen.NewGenerator(nil, d.Log)
	}
	a := &App{mux: http.NewServeMux(), deps: d, log: d.Log}
	auth.SetUserVerifier(d.Service.UserExists)
	a.setupRoutes()
	return withRecover(a.log, withLogging(a.log, auth.Middleware(a.mux)))
}

func (a *App) setupRoutes() {
	svc, log := a.deps.Service, a.log

	// Health
	a.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := a.deps.DB.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public
	handlers.NewAuthHandler(svc, log).Register(a.mux)

	// Authenticated
	dh := handlers.NewDashboardHandler(svc, log)
	a.mux.Handle("GET /api/dashboard", requireAuth(dh.Overview))
	a.mux.Handle("GET /api/account/stats", requireAuth(dh.AccountStats))
	a.mux.Handle("POST /api/maintenance/cleanup", requireAuth(dh.Cleanup))

	ch := handlers.NewClientHandler(svc, log)
	a.mux.Handle("GET /api/clients", requireAuth(ch.List))
	a.mux.Handle("POST /api/clients", requireAuth(ch.Create))
	a.mux.Handle("GET /api/clients/{id}", requireAuth(ch.Get))
	a.mux.Handle("PATCH /api/clients/{id}", requireAuth(ch.Update))
	a.mux.Handle("DELETE /api/clients/{id}", requireAuth(ch.Delete))

	th := handlers.NewTaskHandler(svc, log)
	a.mux.Handle("GET /api/tasks", requireAuth(th.List))
	a.mux.Handle("POST /api/tasks", requireAuth(th.Create))
	a.mux.Handle("GET /api/tasks/due", requireAuth(th.Due))
	a.mux.Handle("GET /api/tasks/pending", requireAuth(th.Pending))
	a.mux.Handle("POST /api/tasks/clear-completed", requireAuth(th.ClearCompleted))
	a.mux.Handle("GET /api/tasks/{id}", requireAuth(th.Get))
	a.mux.Handle("PATCH /api/tasks/{id}", requireAuth(th.Update))
	a.mux.Handle("DELETE /api/tasks/{id}", requireAuth(th.Delete))

	ph := handlers.NewProfileHandler(svc, log)
	a.mux.Handle("GET /api/profile", requireAuth(ph.Get))
	a.mux.Handle("PUT /api/profile", requireAuth(ph.Update))
	a.mux.Handle("POST /api/profile/avatar", requireAuth(ph.UploadAvatar))
	a.mux.Handle("POST /api/profile/password", requireAuth(ph.ChangePassword))

	// Email. Send reports a missing session itself after validating the
	// body, so it is not wrapped in requireAuth.
	eh := handlers.NewEmailHandler(svc, a.deps.Generator, a.deps.Mailer, a.deps.FromEmail, log)
	a.mux.Handle("POST /api/generate-email", requireAuth(eh.Generate))
	a.mux.HandleFunc("POST /api/send-email", eh.Send)

	// Static avatars
	if a.deps.AvatarDir != "" {
		prefix := a.deps.AvatarURL
		if prefix == "" {
			prefix = "/avatars"
		}
		a.mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(a.deps.AvatarDir))))
	}
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func withRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic", zap.Any("recovered", rec), zap.String("path", r.URL.Path))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
