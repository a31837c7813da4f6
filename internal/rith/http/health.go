package http

import (
	"net/http"
	"time"

	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/httpx"
)

type healthChecks struct {
	Database string `json:"database"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 while the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Router			/livez [get].
func LivezHandler(version string, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the store; 503 when the database is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Failure		503	{object}	healthResponse
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		checks := &healthChecks{Database: "ok"}

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, healthResponse{
			Status: status,
			Checks: checks,
		})
	}
}
