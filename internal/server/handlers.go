package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/joshp123/gopool/internal/coordinator"
)

// handleHealth reports the coordinator's view of the pool. STARTING and
// HEALTHY are 200; everything else is 503 so orchestration restarts or
// alerts on a stuck daemon.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health, message := s.coor.Health()

	code := http.StatusOK
	switch health {
	case coordinator.HealthStarting, coordinator.HealthHealthy:
	default:
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"state":   string(health),
		"message": message,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	payload := s.diagnostics()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("encode diagnostics", zap.Error(err))
	}
}
