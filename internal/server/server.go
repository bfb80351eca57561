// Package server exposes the session over a small HTTP control API, so that
// permalinks can be opened from a browser and the player scripted.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/metrics"
	"github.com/llehouerou/wavecast/internal/playlist"
	"github.com/llehouerou/wavecast/internal/session"
)

// Session is the part of the session controller the server drives.
type Session interface {
	OpenLocation(ctx context.Context, address string) (session.Opened, error)
	Snapshot() session.Snapshot
	Next() bool
	Prev() bool
	Select(id string) bool
	Clear() bool
	SetOrder(order playlist.Order)
	KnownFeeds() []feed.Known
	RemoveFeed(address string)
}

// Server is the control server.
type Server struct {
	session Session
	log     zerolog.Logger
	router  chi.Router
	http    *http.Server
}

// New creates a server. A nil gatherer disables /metrics.
func New(s Session, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	srv := &Server{
		session: s,
		log:     logger.With().Str("component", "server").Logger(),
	}
	srv.setupRoutes(gatherer)
	return srv
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	// Permalinks
	r.Get("/", s.handleOpen)

	r.Get("/session", s.handleSnapshot)
	r.Post("/next", s.handleNext)
	r.Post("/prev", s.handlePrev)
	r.Post("/clear", s.handleClear)
	r.Post("/select", s.handleSelect)
	r.Post("/order", s.handleOrder)

	r.Route("/feeds", func(r chi.Router) {
		r.Get("/", s.handleFeeds)
		r.Delete("/", s.handleRemoveFeed)
	})

	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}

	s.router = r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("control server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// --- Handlers ---

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	opened, err := s.session.OpenLocation(r.Context(), "?"+r.URL.RawQuery)
	switch {
	case errors.Is(err, location.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, session.ErrFeedUnavailable):
		writeError(w, http.StatusBadGateway, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if opened.Kind == location.KindImport {
		resp := importResponse{}
		for _, res := range opened.Imported {
			resp.Results = append(resp.Results, importResult{
				Address:  res.Address,
				Imported: res.Entry != nil,
			})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s.session.Snapshot()))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(s.session.Snapshot()))
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	s.move(w, s.session.Next())
}

func (s *Server) handlePrev(w http.ResponseWriter, _ *http.Request) {
	s.move(w, s.session.Prev())
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.move(w, s.session.Clear())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(location.ParamItem)
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing item"))
		return
	}
	s.move(w, s.session.Select(id))
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	order, err := playlist.ParseOrder(r.URL.Query().Get("by"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.session.SetOrder(order)
	writeJSON(w, http.StatusOK, toSessionResponse(s.session.Snapshot()))
}

func (s *Server) handleFeeds(w http.ResponseWriter, _ *http.Request) {
	known := s.session.KnownFeeds()
	resp := make([]knownResponse, 0, len(known))
	for _, k := range known {
		resp = append(resp, knownResponse(k))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveFeed(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if _, err := feed.NormalizeAddress(address); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.session.RemoveFeed(address)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) move(w http.ResponseWriter, moved bool) {
	resp := toSessionResponse(s.session.Snapshot())
	resp.Moved = &moved
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
