// Package bridge exposes the pipeline to an out-of-process display layer:
// fire-and-forget control endpoints, a websocket event stream and /metrics.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/poll"
)

const (
	writeWait      = 5 * time.Second
	clientBuffer   = 32
	shutdownWindow = 5 * time.Second
)

// Server routes bridge requests to one pipeline.
type Server struct {
	router   *mux.Router
	pipeline poll.Pipeline
	bus      *event.Bus
	profile  model.DeviceProfile
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func New(p poll.Pipeline, bus *event.Bus, profile model.DeviceProfile, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   mux.NewRouter(),
		pipeline: p,
		bus:      bus,
		profile:  profile,
		log:      logger.Named("bridge"),
		upgrader: websocket.Upgrader{
			// The bridge only listens where the operator points it.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.routes(gatherer)
	return s
}

// routes registers full paths on the root router; a method mismatch on a
// subrouter falls through to 404 instead of 405.
func (s *Server) routes(gatherer prometheus.Gatherer) {
	r := s.router
	r.HandleFunc("/v1/monitor/start", s.control(s.pipeline.Start)).Methods(http.MethodPost)
	r.HandleFunc("/v1/monitor/stop", s.control(s.pipeline.Stop)).Methods(http.MethodPost)
	r.HandleFunc("/v1/monitor/refresh", s.control(s.pipeline.ForceUpdate)).Methods(http.MethodPost)
	r.HandleFunc("/v1/app-state", s.handleAppState).Methods(http.MethodPost)
	r.HandleFunc("/v1/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/v1/device", s.handleDevice).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("bridge listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// control wraps a fire-and-forget operation. The caller only learns that the
// request was accepted.
func (s *Server) control(op func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("control request", zap.String("path", r.URL.Path))
		op()
		w.WriteHeader(http.StatusAccepted)
	}
}

type appStateRequest struct {
	State model.AppState `json:"state"`
}

func (s *Server) handleAppState(w http.ResponseWriter, r *http.Request) {
	var req appStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	switch req.State {
	case model.AppActive, model.AppBackground, model.AppInactive:
	default:
		http.Error(w, "unknown state", http.StatusBadRequest)
		return
	}
	s.pipeline.SetAppState(req.State)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"state": s.pipeline.State().String()})
}

func (s *Server) handleDevice(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.profile)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
