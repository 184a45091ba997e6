package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/version"
)

// statusServer exposes read-only engine state over HTTP for operators
// and health probes. It is not a trading API.
type statusServer struct {
	srv    *http.Server
	engine *Engine
	log    *logger.Logger
}

func newStatusServer(addr string, e *Engine, log *logger.Logger) *statusServer {
	s := &statusServer{engine: e, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	router.HandleFunc("/queue", s.handleQueue).Methods(http.MethodGet)
	router.HandleFunc("/strategies", s.handleStrategies).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *statusServer) start(ctx context.Context) {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("status server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()
}

func (s *statusServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(shutdownCtx)
}

func (s *statusServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.engine.FatalErr(); err != nil {
		status = "halted: " + err.Error()
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]string{
		"status":  status,
		"version": version.Engine,
	})
}

func (s *statusServer) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Portfolio())
}

func (s *statusServer) handleQueue(w http.ResponseWriter, _ *http.Request) {
	depth, capacity, fullEvents := s.engine.QueueDepth()
	writeJSON(w, http.StatusOK, map[string]any{
		"depth":       depth,
		"capacity":    capacity,
		"full_events": fullEvents,
	})
}

func (s *statusServer) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Registry().Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
