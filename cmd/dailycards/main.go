package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/dailycards/internal/catalog"
	"github.com/conorfennell/dailycards/internal/config"
	"github.com/conorfennell/dailycards/internal/gitsource"
	"github.com/conorfennell/dailycards/internal/importer"
	"github.com/conorfennell/dailycards/internal/logger"
	"github.com/conorfennell/dailycards/internal/progress"
	"github.com/conorfennell/dailycards/internal/storage"
	"github.com/conorfennell/dailycards/internal/web"
)

const shutdownTimeout = 5 * time.Second

const usage = `Usage: dailycards <command> [flags]

Commands:
  serve     run the HTTP API
  import    build a catalog from card files and spreadsheets
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("dailycards failed", "error", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogPath := cfg.Data.Catalog
	if cfg.Catalog.Repo != "" {
		if err := gitsource.Sync(ctx, cfg.Catalog.Repo, cfg.Catalog.Checkout); err != nil {
			return fmt.Errorf("sync catalog repo: %w", err)
		}
		catalogPath = filepath.Join(cfg.Catalog.Checkout, cfg.Catalog.File)
	}

	loader := catalog.NewFileLoader(catalogPath)
	cards, err := loader.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	slog.Info("Catalog loaded", "path", catalogPath, "cards", len(cards))

	store, closeStore, err := openStore(ctx, cfg.Data)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []web.Option
	if cfg.Server.Static != "" {
		opts = append(opts, web.WithStaticDir(cfg.Server.Static))
	}
	server := web.NewServer(loader, progress.NewTracker(store), cfg.Deck, opts...)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", cfg.Server.Addr, "driver", cfg.Data.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// openStore returns the progress store selected by cfg.Driver and a func
// releasing it.
func openStore(ctx context.Context, cfg config.DataConfig) (progress.Store, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := storage.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Database opened successfully", "path", cfg.SQLite)
		return db, func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		}, nil
	default:
		slog.Info("Using JSON progress file", "path", cfg.Progress)
		return progress.NewFileStore(cfg.Progress), func() {}, nil
	}
}

func runImport(args []string) error {
	fs := pflag.NewFlagSet("import", pflag.ExitOnError)
	src := fs.String("src", ".", "Directory to scan for .md, .txt, .csv and .xlsx card files")
	out := fs.String("out", "data/cards.json", "Catalog file to write")
	level := fs.String("log-level", "info", "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.Setup(config.LogConfig{Level: *level, Format: "text"})

	cards, report, err := importer.ImportDir(*src)
	if err != nil {
		return err
	}
	if err := importer.WriteCatalog(*out, cards); err != nil {
		return err
	}

	fmt.Printf("Found %d cards in %d files (%d generated ids), %d errors.\n",
		report.Cards, report.Files, report.GeneratedIDs, len(report.Errors))
	if len(report.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range report.Errors {
			fmt.Printf("- %s\n", e)
		}
	}
	return nil
}
