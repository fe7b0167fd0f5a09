package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"movielog-server/internal/deps"
	pkghttpx "movielog-server/pkg/httpx"
)

type databaseStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status      string         `json:"status"`
	Service     string         `json:"service,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Uptime      float64        `json:"uptime"`
	Environment string         `json:"environment"`
	Database    databaseStatus `json:"database"`
}

// Health returns a handler that reports service and database status. An
// unreachable database answers 503.
func Health(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Clock()
		resp := healthResponse{
			Status:      "healthy",
			Service:     d.Name,
			Timestamp:   now.UTC().Format(time.RFC3339Nano),
			Uptime:      now.Sub(d.StartedAt).Seconds(),
			Environment: d.Env,
			Database:    databaseStatus{Status: "connected", Message: "Database connection successful"},
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			log.Warn().Err(err).Msg("health: database ping failed")
			resp.Database = databaseStatus{Status: "disconnected", Message: "Database connection failed"}
			pkghttpx.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, resp)
	}
}
