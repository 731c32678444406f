package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/teamwork/internal/logging"
	"github.com/aretw0/teamwork/internal/presentation/graph"
	"github.com/aretw0/teamwork/pkg/container"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Roles is the read side of a role registry.
type Roles interface {
	Definitions() []domain.RoleDefinition
	Lookup(kind domain.Kind) (domain.RoleDefinition, error)
}

// Components is the read side of a container.
type Components interface {
	Inspect() []container.Binding
}

// Server serves read-only views of a runtime.
type Server struct {
	Roles      Roles
	Components Components
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer exposes the gatherer's metrics on /metrics.
// Without it the route is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the logger for encode failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates an HTTP handler over a registry and a container.
func NewHandler(roles Roles, components Components, opts ...Option) http.Handler {
	s := &Server{
		Roles:      roles,
		Components: components,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/roles", s.ListRoles)
	r.Get("/roles/{kind}", s.GetRole)
	r.Get("/components", s.ListComponents)
	r.Get("/graph", s.GetGraph)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRoles handles GET /roles.
func (s *Server) ListRoles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Roles.Definitions())
}

// GetRole handles GET /roles/{kind}.
func (s *Server) GetRole(w http.ResponseWriter, r *http.Request) {
	def, err := s.Roles.Lookup(domain.Kind(chi.URLParam(r, "kind")))
	if errors.Is(err, domain.ErrUnknownRoleKind) {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// ListComponents handles GET /components.
func (s *Server) ListComponents(w http.ResponseWriter, r *http.Request) {
	bindings := s.Components.Inspect()
	out := make([]Component, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, componentFromBinding(b))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetGraph handles GET /graph, rendering the dependency graph as Mermaid.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	bindings := s.Components.Inspect()
	nodes := make([]graph.Node, 0, len(bindings))
	for _, b := range bindings {
		nodes = append(nodes, graph.Node{
			Ref:          b.Ref,
			Dependencies: b.Dependencies,
			Warned:       len(b.Violations) > 0,
		})
	}
	w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
	if _, err := w.Write([]byte(graph.GenerateMermaid(nodes))); err != nil {
		s.logger.Error("graph write failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
