package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/vcs"
)

const healthCheckTimeout = 2 * time.Second

const (
	healthUp       = "UP"
	healthDegraded = "DEGRADED"
	healthDown     = "DOWN"
)

// GetHealth reports the build and whether the order database and the session
// store answer. Any dependency down turns the response into a 503 so load
// balancers stop routing visitors here.
func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := api.HealthcheckResponse{
		Status: healthUp,
		SystemInfo: api.SystemInfo{
			Version:     vcs.Version(),
			Environment: app.config.Env,
		},
		Dependencies: app.dependencyStatus(ctx),
	}

	status := http.StatusOK
	for _, state := range resp.Dependencies {
		if state != healthUp {
			resp.Status = healthDegraded
			status = http.StatusServiceUnavailable
		}
	}

	err := app.writeJSON(w, status, api.Envelope{Success: status == http.StatusOK, Data: resp}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) dependencyStatus(ctx context.Context) map[string]string {
	deps := make(map[string]string)

	if app.db != nil {
		deps["postgres"] = healthUp
		if err := app.db.Ping(ctx); err != nil {
			app.logger.Warn("health: postgres unreachable", "error", err)
			deps["postgres"] = healthDown
		}
	}

	if app.redis != nil {
		deps["redis"] = healthUp
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.logger.Warn("health: redis unreachable", "error", err)
			deps["redis"] = healthDown
		}
	}

	return deps
}

// GetOpenAPI serves the API document as is, without the envelope.
func (app *Application) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	swagger, err := api.GetSwagger()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, swagger, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
