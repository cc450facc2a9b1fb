// Package server exposes the daemon's HTTP surface: liveness,
// Prometheus metrics, and a redacted diagnostics dump.
package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joshp123/gopool/internal/config"
	"github.com/joshp123/gopool/internal/connectmypool"
	"github.com/joshp123/gopool/internal/coordinator"
)

// Server serves health, metrics, and diagnostics for one pool daemon.
type Server struct {
	srv  *http.Server
	log  *zap.Logger
	cfg  *config.Config
	coor *coordinator.Coordinator
	pool *connectmypool.Config
}

func New(cfg *config.Config, coor *coordinator.Coordinator, poolCfg *connectmypool.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:  log,
		cfg:  cfg,
		coor: coor,
		pool: poolCfg,
	}

	poolID := connectmypool.StableID(cfg.PoolAPICode)
	snapshot := coordinator.NewSnapshotCollector(poolID, coor.LastStatus)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", MetricsHandler(NewRegistry(snapshot)))
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)

	s.srv = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
