package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Digital-Shane/posteria/internal/config"
	"github.com/Digital-Shane/posteria/internal/core"
	"github.com/Digital-Shane/posteria/internal/log"
	"github.com/Digital-Shane/posteria/internal/media"
	"github.com/Digital-Shane/posteria/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Searcher runs one poster query. *core.Aggregator implements it.
type Searcher interface {
	Fetch(ctx context.Context, q media.Query, trace *log.Trace) ([]core.PosterRecord, error)
}

type Server struct {
	cfg      *config.Config
	searcher Searcher
	logger   *logrus.Entry
	now      func() time.Time

	mu         sync.Mutex
	httpServer *http.Server
}

func NewServer(cfg *config.Config, searcher Searcher, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	return &Server{
		cfg:      cfg,
		searcher: searcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestID, metrics.Middleware)

	posters := router.PathPrefix("/api/fetch/posters").Subrouter()
	posters.Use(cors)

	posters.HandleFunc("/time", s.Time).Methods(http.MethodGet, http.MethodOptions)

	protected := posters.PathPrefix("").Subrouter()
	protected.Use(s.authenticate)
	protected.HandleFunc("", s.Posters).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/", s.Posters).Methods(http.MethodGet, http.MethodOptions)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// Start listens on the configured address until Stop is called
func (s *Server) Start() error {
	// A query runs up to four upstream stages
	writeTimeout := 4*s.cfg.RequestTimeout() + 15*time.Second

	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.WithField("addr", s.cfg.ListenAddr).Info("starting server")
	return srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
