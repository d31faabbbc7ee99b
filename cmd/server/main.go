package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/ledger/internal/archive"
	"github.com/JonMunkholm/ledger/internal/config"
	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/logging"
	"github.com/JonMunkholm/ledger/internal/store"
	"github.com/JonMunkholm/ledger/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
		"primary_table", cfg.Ledger.PrimaryTable,
		"fallback_table", cfg.Ledger.FallbackTable,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"archive_enabled", cfg.Archive.Enabled(),
	)

	ctx := context.Background()

	ledgerStore, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open ledger store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	archiver, closeArchive, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		slog.Error("failed to set up snapshot archive", "error", err)
		os.Exit(1)
	}
	defer closeArchive()

	var opts []core.ServiceOption
	if archiver != nil {
		opts = append(opts, core.WithArchiver(archiver))
	}
	service := core.NewService(ledgerStore, cfg, opts...)

	if cfg.Ledger.AutoMigrate {
		if _, err := service.Migrate(ctx); err != nil {
			slog.Error("failed to migrate ledger table", "error", err)
			os.Exit(1)
		}
	}

	server := web.NewServer(service, cfg)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSnapshotScheduler(jobCtx, cfg.Archive.SnapshotInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// A half-finished import would leave the ledger mid-replacement
		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
