package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"igviral/internal/server"
	"igviral/pkg/explore"
	"igviral/pkg/hiker"
	"igviral/pkg/logger"
	"igviral/pkg/mediacache"
	"igviral/pkg/settings"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long: `Start the HTTP server backing the virality dashboard.

The server holds one pagination context per search subject, resolves media
through the caching proxy, and shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.GetLogger()

	blobs, err := mediacache.NewBlobStore(cfg.Media.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to open media store: %w", err)
	}

	exploreClient := explore.NewClient(cfg, log)
	hikerClient := hiker.NewClient(cfg, log)
	media := mediacache.New(blobs, exploreClient, cfg.Media.MaxEntries, log)

	var prefetcher *mediacache.Prefetcher
	if cfg.Media.PrefetchEnabled {
		prefetcher = mediacache.NewPrefetcher(cfg.Media.PrefetchWorkers, media, log)
		prefetcher.Start()
		defer prefetcher.Stop()

		go func() {
			for range prefetcher.Results() {
				// drain; outcomes are logged by the workers
			}
		}()
	}

	store, err := settings.NewSQLiteStore(cfg.Settings.Path)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer store.Close()

	srv := server.New(cfg, hikerClient, exploreClient, media, blobs, store, log)
	if prefetcher != nil {
		srv.SetPrefetcher(prefetcher)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.InfoWithFields("shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
