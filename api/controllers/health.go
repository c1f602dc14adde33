package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/utulok/shelter-backend/api/responses"
	"github.com/utulok/shelter-backend/pkg/config"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
)

// Pinger is the shared shape of dependencies the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shelter-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing dependency
// answers a ping. Individual failures are aggregated so one probe
// response names them all.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shelter-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var failures error
		status := map[string]string{}
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				failures = multierr.Append(failures, err)
				continue
			}
			status[name] = "up"
		}

		if failures != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "dependencies unavailable").
				WithDetails(status)
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": status})
	}
}
