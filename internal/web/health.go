package web

import (
	"net/http"
	"time"

	"github.com/tracknfresh/tracknfresh-web/internal/metrics"
	"github.com/tracknfresh/tracknfresh-web/internal/web/respond"
)

// healthz answers 200 while the process serves; the body reports whether the
// food service and identity provider are reachable. With ?ready=1 an unhealthy
// dependency turns the answer into 503.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	var components map[string]bool
	var since string
	if s.health != nil {
		components = s.health.Components()
		if !s.health.IsHealthy() {
			status = "unhealthy"
		}
		if t := s.health.Since(); !t.IsZero() {
			since = t.UTC().Format(time.RFC3339)
		}
	}
	if status == "unhealthy" && r.URL.Query().Get("ready") == "1" {
		respond.WriteUnavailable(w, "dependencies unhealthy")
		return
	}
	body := map[string]interface{}{
		"status":     status,
		"timestamp":  s.now().UTC().Format(time.RFC3339),
		"components": components,
	}
	if since != "" {
		body["since"] = since
	}
	respond.WriteJSON(w, http.StatusOK, body)
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}
