// Package server assembles logcove's chi-routed HTTP surface (spec §6):
// health/version routes, the ingest routes, the query/counts routes, and
// the shared 404/405/panic error envelopes every route shares.
//
// Grounded on gonimbus's internal/server (test-only in the retrieval pack)
// and internal/cmd's chi wiring idiom: one constructor builds a *chi.Mux,
// registers middleware and routes, and exposes Handler()/Port() for the
// caller (internal/cmd/serve.go) to run.
package server

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/3leaps/logcove/internal/errors"
	"github.com/3leaps/logcove/internal/server/handlers"
	"github.com/3leaps/logcove/internal/server/middleware"
)

// adminTokenEnvVars are the environment variables that, if set to a
// non-empty value, enable the admin surface. Left unset by default, the
// admin routes 404 rather than 401/403, matching the teacher's own
// disabled-by-default posture.
var adminTokenEnvVars = []string{"LOGCOVE_ADMIN_TOKEN"}

// Server hosts logcove's HTTP surface on one host:port.
type Server struct {
	host string
	port int

	mux *chi.Mux

	Ingest *handlers.IngestHandler
	Query  *handlers.QueryHandler
}

// New builds a Server bound to host:port. No routes are wired yet: callers
// attach Ingest/Query and then call Handler(), which wires the health,
// version and domain routes.
func New(host string, port int) *Server {
	s := &Server{host: host, port: port, mux: chi.NewRouter()}
	return s
}

// Handler builds (or rebuilds) the chi.Mux for this server's current
// Ingest/Query handlers and returns it as an http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", versionHandler)

	if s.Ingest != nil {
		r.Post("/ingest", s.Ingest.Ingest)
		r.Post("/logstream/{name}", func(w http.ResponseWriter, r *http.Request) {
			s.Ingest.Post(w, r, chi.URLParam(r, "name"))
		})
	}

	if s.Query != nil {
		r.Get("/tables", s.Query.Tables)
		r.Delete("/logstream/{name}", func(w http.ResponseWriter, r *http.Request) {
			s.Query.Delete(w, r, chi.URLParam(r, "name"))
		})
		r.Post("/logstream/{name}/count", func(w http.ResponseWriter, r *http.Request) {
			s.Query.Count(w, r, chi.URLParam(r, "name"))
		})
		r.Get("/logstream/{name}/files", func(w http.ResponseWriter, r *http.Request) {
			s.Query.Scan(w, r, chi.URLParam(r, "name"))
		})
	}

	if adminTokenConfigured() {
		r.Post("/admin/signal", adminSignalHandler)
	}

	s.mux = r
	return r
}

// Port returns the configured listen port.
func (s *Server) Port() int { return s.port }

// Host returns the configured listen host.
func (s *Server) Host() string { return s.host }

// Addr returns the "host:port" listen address.
func (s *Server) Addr() string {
	return s.host + ":" + strconv.Itoa(s.port)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	apperrors.RespondWithError(w, r, apperrors.New(apperrors.KindNotFound, "route not found"))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	apperrors.RespondWithError(w, r, apperrors.New(apperrors.KindMethodNotAllowed, "method not allowed"))
}

func adminTokenConfigured() bool {
	for _, name := range adminTokenEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

func adminSignalHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

var versionValue = "dev"

// SetVersion overrides the value /version reports; internal/cmd calls this
// once at startup with the build-time version string.
func SetVersion(v string) { versionValue = v }

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"version":"` + versionValue + `"}`))
}
