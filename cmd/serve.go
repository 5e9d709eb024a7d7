package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rbnhln/kckScraper/internal/scraper"
	"github.com/spf13/cobra"
)

func (app *application) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve teachers and schedules as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.config.Server.Addr
			}
			return app.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serve blocks until ctx is cancelled, then drains in-flight requests.
func (app *application) serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(app.logRequests)

	r.Get("/teachers", app.handleTeachers)
	r.Get("/teachers/{id}", app.handleTeacherSchedule)
	return r
}

func (app *application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		app.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (app *application) handleTeachers(w http.ResponseWriter, r *http.Request) {
	list, err := app.fetcher.FetchTeacherList(r.Context())
	if err != nil {
		app.writeError(w, err)
		return
	}
	app.writeJSONResponse(w, http.StatusOK, list)
}

func (app *application) handleTeacherSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := parseTeacherID(chi.URLParam(r, "id"))
	if err != nil {
		app.writeJSONResponse(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	ts, err := app.fetcher.FetchTeacherSchedule(r.Context(), id)
	if err != nil {
		app.writeError(w, err)
		return
	}
	app.writeJSONResponse(w, http.StatusOK, ts)
}

type errorBody struct {
	Error string `json:"error"`
}

func (app *application) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var terr *scraper.TransportError
	switch {
	case errors.Is(err, scraper.ErrUnknownTeacher):
		status = http.StatusNotFound
	case errors.As(err, &terr):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		app.logger.Error("request failed", "error", err)
	}
	app.writeJSONResponse(w, status, errorBody{Error: err.Error()})
}

func (app *application) writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Warn("write response failed", "error", err)
	}
}
