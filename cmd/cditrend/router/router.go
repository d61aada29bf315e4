// Package router configures HTTP routes for cditrend's optional
// observability listener.
//
// The listener only runs for the duration of a sampling run, when the
// -listen flag is set. Routes configured:
//   - GET /healthz - Health check endpoint (returns 200 OK)
//   - GET /metrics - Prometheus metrics endpoint
//   - GET /series/latest - Most recently appended sample as JSON
package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brclabs/cditrend/pkg/httpx"
	"github.com/brclabs/cditrend/pkg/series"
)

// SetupRoutes configures the observability endpoints.
func SetupRoutes(store series.Store, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/healthz", httpx.HealthHandler())
	mux.HandleFunc("/series/latest", handleLatestSample(store, logger))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleLatestSample returns a handler for GET /series/latest.
func handleLatestSample(store series.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httpx.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		samples, err := store.Load(r.Context())
		if err != nil {
			logger.Error("failed to load series", "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "failed to load series")
			return
		}

		if len(samples) == 0 {
			httpx.WriteErrorMessage(w, http.StatusNotFound, "series is empty")
			return
		}

		if err := httpx.WriteJSON(w, http.StatusOK, samples[len(samples)-1]); err != nil {
			logger.Error("failed to write sample response", "error", err)
		}
	}
}
