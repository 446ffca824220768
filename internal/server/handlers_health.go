package server

import (
	"net/http"
	"time"
)

// handleHealth godoc
// @Title Health check
// @Description Returns service health and uptime information.
// @Resource System
// @Produce json
// @Success 200 {object} HealthResponse
// @Route /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storeKind := "memory"
	if s.cfg.Database.URL != "" {
		storeKind = "postgres"
	}
	payload := HealthResponse{
		Status:    "ok",
		Service:   s.cfg.AppName,
		Env:       s.cfg.Env,
		UptimeSec: int64(time.Since(s.startedAt).Seconds()),
		Store:     storeKind,
	}
	s.writeJSON(w, http.StatusOK, payload)
}
