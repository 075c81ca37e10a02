package controllers

import (
	"net/http"

	"github.com/mlevasseur/batisuivi-backend/api/responses"
	"github.com/mlevasseur/batisuivi-backend/pkg/config"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Batisuivi-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness, running the wired probes (database, cache).
func HealthReady(cfg *config.Config, logg *logger.Logger, probes ...func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Batisuivi-Env", cfg.App.Env)
		for _, probe := range probes {
			if probe == nil {
				continue
			}
			if err := probe(); err != nil {
				if logg != nil {
					logg.Error(r.Context(), "readiness probe failed", err)
				}
				responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
