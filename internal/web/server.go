package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ranks-app/internal/roster"
)

type Server struct {
	roster       *roster.Service
	templates    *Templates
	logger       *zap.Logger
	adminKeyHash string
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAdminKeyHash enables the admin endpoints for callers presenting the key
// behind this bcrypt hash.
func WithAdminKeyHash(hash string) Option {
	return func(s *Server) { s.adminKeyHash = hash }
}

func NewServer(svc *roster.Service, templates *Templates, opts ...Option) *Server {
	s := &Server{roster: svc, templates: templates, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.logger))

	r.Get("/", s.handleHome)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/dev/roster", s.handleDevRoster)
	r.Get("/regions", s.handleRegions)
	r.Get("/players/{playerID}", s.handlePlayerShow)
	r.Get("/ws/typeahead", s.handleTypeaheadWS)
	r.Post("/admin/roster/refresh", s.handleRosterRefresh)
	r.Get("/{region}/players", s.handleRegionPlayers)
	r.Get("/{region}/players/typeahead", s.handleTypeahead)
	r.Get("/{region}/search", s.handleSearchPage)
	r.Post("/{region}/seed", s.handleSeed)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
