package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Digital-Shane/posteria/internal/api"
	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/core"
	"github.com/Digital-Shane/posteria/internal/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the poster HTTP service",
	Long: `Run the HTTP service.

Routes:
  GET /api/fetch/posters       poster search (requires X-Client-Info or ?key=)
  GET /api/fetch/posters/time  server clock for signing X-Client-Info
  GET /metrics                 Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides listen_addr")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if cfg.TMDBAPIKey == "" {
		return errors.New("a TMDB API key is required: set TMDB_API_KEY or tmdb_api_key")
	}

	logger := log.Service(log.New(cfg.LogLevel, cfg.LogFormat, os.Stdout), "posteria")
	if cfg.FanartAPIKey == "" {
		logger.Warn("no fanart.tv API key configured, fanart.tv posters are disabled")
	}
	if cfg.AccessKey == "" {
		logger.Warn("no access key configured, only signed clients can query")
	}

	agg := core.FromConfig(cfg, cache.NewShared(cfg.CacheTTL()), logger)
	srv := api.NewServer(cfg, agg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	}
}
