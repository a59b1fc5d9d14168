package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gavelworks/auctiondesk/api/responses"
	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
	"github.com/gavelworks/auctiondesk/pkg/logger"
)

// Pinger is the dependency surface the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports that the process is up.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady reports whether the datastore dependencies are reachable.
func HealthReady(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
