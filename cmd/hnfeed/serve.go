package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mlundgren/hnfeed/pkg/feed"
	"github.com/mlundgren/hnfeed/pkg/health"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the frontpage feed over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	app, err := buildApp(ctx, appCfg)
	if err != nil {
		return err
	}
	defer app.close()

	srv := &http.Server{
		Addr:              appCfg.Server.Addr,
		Handler:           newRouter(app.assembler, app.tracker),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", appCfg.Server.Addr).Msg("Starting feed server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the HTTP surface: the frontpage endpoint plus health and
// metrics.
func newRouter(assembler *feed.Assembler, tracker *health.Tracker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/frontpage", frontpageHandler(assembler))
	r.Get("/healthz", healthHandler(tracker))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// frontpageHandler serves one assembled page.
// Query params: cursor (opaque token, optional), n (page size, optional).
func frontpageHandler(assembler *feed.Assembler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cursor := feed.Cursor(r.URL.Query().Get("cursor"))

		pageSize := 0
		if raw := r.URL.Query().Get("n"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid page size")
				return
			}
			pageSize = n
		}

		page, err := assembler.GetPage(r.Context(), cursor, pageSize)
		if err != nil {
			switch {
			case errors.Is(err, feed.ErrInvalidCursor), errors.Is(err, feed.ErrInvalidPageSize):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, feed.ErrUpstreamDegraded):
				// Retryable degraded condition, not a hard failure.
				writeError(w, http.StatusServiceUnavailable, err.Error())
			case errors.Is(err, context.Canceled):
				// Client went away; nothing useful to write.
			default:
				log.Error().Err(err).Msg("Page assembly failed")
				writeError(w, http.StatusBadGateway, "upstream request failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

// healthHandler reports liveness plus the shared upstream health view.
func healthHandler(tracker *health.Tracker) http.HandlerFunc {
	type response struct {
		Status   string        `json:"status"`
		Upstream *health.State `json:"upstream,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := response{Status: "ok"}

		if tracker != nil {
			state, err := tracker.State(r.Context())
			if err != nil {
				log.Warn().Err(err).Msg("Health state unavailable")
			} else {
				resp.Upstream = state
				if state.Degraded {
					resp.Status = "degraded"
				}
			}
		}

		status := http.StatusOK
		if resp.Status == "degraded" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
