package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidsavoie1/params-router/pkg/history"
	"github.com/davidsavoie1/params-router/pkg/httpbridge"
	"github.com/davidsavoie1/params-router/pkg/locationsync"
	"github.com/davidsavoie1/params-router/pkg/middleware"
	"github.com/davidsavoie1/params-router/pkg/scope"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo server exposing the engine over HTTP and WebSocket",
		Long: `Run a server that demonstrates the engine end to end:

  /metrics            Prometheus metrics for navigation activity
  /ws                 WebSocket location mirror (push navigations in,
                      committed locations out)
  /users/{userId}/... chi routes whose handlers read parameters from
                      nested scopes derived per request`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}

func runServe(addr string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	hist := history.Wrap(history.NewMemory("/"),
		middleware.Prometheus(),
		middleware.OpenTelemetry(),
	)
	composer := scope.NewComposer(hist)

	sync := locationsync.NewServer(hist, logger)
	defer sync.Close()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/ws", sync)

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Use(httpbridge.Scoped(composer, scope.Path("/users/:userId")))
		r.Get("/", paramsHandler)

		r.Route("/posts/{postId}", func(r chi.Router) {
			r.Use(httpbridge.Scoped(composer, scope.Path("/posts/:postId")))
			r.Get("/", paramsHandler)
		})
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// paramsHandler responds with the request scope's parameters as JSON.
func paramsHandler(w http.ResponseWriter, r *http.Request) {
	s := httpbridge.ScopeFrom(r.Context())
	if s == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"params":     s.Params,
		"rootParams": s.RootParams,
		"rest":       s.Rest,
		"all":        s.All(),
	})
}
