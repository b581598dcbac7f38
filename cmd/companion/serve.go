package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"companion/internal/api"
	"companion/internal/core"
	"companion/internal/session"
)

var (
	serveAddr       string
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and WebSocket API",
	Long: `Starts the API server. Sessions live in memory and are discarded when
the server stops.

Routes:
  POST   /sessions                     create a session
  GET    /sessions/{id}                session snapshot
  POST   /sessions/{id}/messages       send a message
  GET    /sessions/{id}/ws             live snapshot stream
  GET    /personalities                available assistants
  GET    /templates                    template catalog`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from HTTP_ADDR)")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr == "" {
		serveAddr = cfg.HTTPAddr
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	backend, err := core.NewBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	engine := core.NewEngine(cfg, registry, backend, logger)

	sessions := session.NewManager(engine,
		session.WithPersonality(cfg.DefaultPersonality),
		session.WithMoodResetDelay(cfg.MoodResetDelay),
		session.WithLogger(logger),
	)
	defer sessions.Close()

	handler := api.NewHandler(sessions, registry, cat, logger)
	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening",
			"addr", srv.Addr,
			"remote", engine.RemoteEnabled(),
			"templates", cat.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
