package server

import (
	"github.com/joshp123/gopool/internal/connectmypool"
)

const redacted = "**REDACTED**"

// diagnostics assembles a support dump. The pool API code is a
// credential: it appears only as its hashed stable id, and any copy the
// cloud echoes back inside raw payloads is scrubbed.
func (s *Server) diagnostics() map[string]any {
	health, message := s.coor.Health()

	payload := map[string]any{
		"pool_id":  connectmypool.StableID(s.cfg.PoolAPICode),
		"base_url": s.cfg.BaseURL,
		"health": map[string]string{
			"state":   string(health),
			"message": message,
		},
		"settings": map[string]any{
			"temperature_scale":  s.cfg.TemperatureScale,
			"scan_interval":      s.cfg.ScanInterval,
			"settle_seconds":     s.cfg.SettleSeconds,
			"cycle_attempts":     s.cfg.CycleAttempts,
			"wait_for_execution": s.cfg.Wait(),
		},
	}

	if s.pool != nil {
		payload["pool_config"] = redactSecrets(s.pool.Raw)
	}
	if status := s.coor.LastStatus(); status != nil {
		payload["last_status"] = redactSecrets(status.Raw)
	}
	return payload
}

// redactSecrets returns a copy of v with every pool_api_code value
// replaced, recursing through nested objects and lists.
func redactSecrets(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if k == "pool_api_code" {
				out[k] = redacted
				continue
			}
			out[k] = redactSecrets(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactSecrets(item)
		}
		return out
	default:
		return v
	}
}
