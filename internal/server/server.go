// Package server exposes a running simulation over HTTP and WebSocket.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"socialgraph/internal/db"
	"socialgraph/internal/metrics"
	"socialgraph/internal/render"
	"socialgraph/internal/session"
)

// Options wires a Server. DB and Metrics may be nil: saving then answers
// 503 and /metrics is not mounted.
type Options struct {
	Session     *session.Context
	Hub         *render.Hub
	DB          *db.DB
	Metrics     *metrics.Collector
	Logger      *zap.Logger
	BaseURL     string
	CORSOrigins []string
}

type Server struct {
	session  *session.Context
	hub      *render.Hub
	db       *db.DB
	metrics  *metrics.Collector
	logger   *zap.Logger
	baseURL  string
	origins  []string
	upgrader websocket.Upgrader
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &Server{
		session: opts.Session,
		hub:     opts.Hub,
		db:      opts.DB,
		metrics: opts.Metrics,
		logger:  logger,
		baseURL: opts.BaseURL,
		origins: origins,
	}
	s.upgrader = websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      s.checkOrigin,
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/graph", func(r chi.Router) {
			r.Get("/", s.getGraph)
			r.Put("/", s.putGraph)
			r.Get("/export", s.exportGraph)
			r.Post("/save", s.saveGraph)
		})
		r.Route("/vertices", func(r chi.Router) {
			r.Post("/", s.addVertex)
			r.Patch("/{id}", s.updateVertex)
			r.Delete("/{id}", s.removeVertex)
			r.Post("/{id}/links", s.addLink)
		})
		r.Get("/pick", s.pick)
		r.Get("/nearest", s.nearest)
		r.Get("/frame", s.frame)
		r.Route("/simulation", func(r chi.Router) {
			r.Post("/pause", s.pause)
			r.Post("/resume", s.resume)
			r.Put("/params", s.setParams)
		})
	})

	r.Get("/ws", s.websocket)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// checkOrigin applies the CORS origin list to websocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
