// Package server exposes a loaded dataset over HTTP for interactive browsing
// of statistics, plots and the profiling report.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/KaramelBytes/dfstats-cli/internal/report"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Report          report.Options
	// Bins for histogram endpoints.
	Bins int
}

func NewWebAPI(logger zerolog.Logger, ds *dataset.Dataset, config Config) *WebAPI {
	router := chi.NewRouter()
	router.Use(Logger(&logger))
	router.Use(middleware.Recoverer)

	h := &handler{ds: ds, report: config.Report, bins: config.Bins}
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/variables", h.listVariables)
		r.Get("/summary", h.summary)
		r.Get("/stats/{variable}", h.stats)
	})
	router.Get("/plots/histogram/{variable}", h.histogram)
	router.Get("/plots/scatter/{x}/{y}", h.scatter)
	router.Get("/report", h.htmlReport)

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (w *WebAPI) Handler() http.Handler { return w.router }

// Start serves until the listener fails or SIGINT/SIGTERM arrives.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func Logger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr).
				Logger()

			ctx := reqLogger.WithContext(req.Context())
			req = req.WithContext(ctx)

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			reqLogger.Debug().Int("status", ww.Status()).Dur("elapsed", time.Since(start)).Msg("request served")
		})
	}
}
