package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/routemanager/internal/api"
	"github.com/edvin/routemanager/internal/config"
	"github.com/edvin/routemanager/internal/core"
	"github.com/edvin/routemanager/internal/db"
	"github.com/edvin/routemanager/internal/logging"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting (postgres store only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("route-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		if cfg.GraphStore != config.StorePostgres {
			logger.Fatal().Str("graph_store", cfg.GraphStore).Msg("-migrate requires the postgres graph store")
		}
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.GraphDatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open graph store")
	}
	defer store.Close()

	services := core.NewServices(store)

	// Unique indexes only back up the service's own checks, so a failure
	// here is logged and startup continues.
	if cfg.EnforceUniqueIndexes {
		if err := services.Inventory.InstallConstraints(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to install unique indexes")
		} else {
			logger.Info().Msg("unique indexes installed")
		}
	}

	tlsConfig, err := cfg.ServerTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure HTTP TLS")
	}

	srv := api.NewServer(logger, services)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		TLSConfig:    tlsConfig,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPListenAddr).
			Bool("tls", tlsConfig != nil).
			Msg("starting route API server")

		var err error
		if tlsConfig != nil {
			// Certificates are already loaded into TLSConfig.
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
