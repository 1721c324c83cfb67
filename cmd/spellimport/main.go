// Command spellimport loads the YAML spell catalog and stores it in PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/magic2d/internal/config"
	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := flag.String("config", "config/engine.yaml", "path to engine config")
	dir := flag.String("dir", "", "catalog directory (default: catalog_dir from config)")
	dryRun := flag.Bool("dry-run", false, "parse and validate only")
	flag.Parse()

	cfg, err := config.LoadEngine(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading engine config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	src := cfg.CatalogDir
	if *dir != "" {
		src = *dir
	}

	if *dryRun {
		catalog, err := data.LoadCatalogDir(ctx, src)
		if err != nil {
			return fmt.Errorf("loading spell catalog: %w", err)
		}
		slog.Info("catalog parsed", "dir", src, "spells", catalog.Len(), "digest", catalog.Digest())
		return nil
	}

	_, err = importDir(ctx, cfg.Database.DSN(), src)
	return err
}

// importDir parses the catalog in dir, migrates the database and stores the catalog.
// Returns false when the database already holds a catalog with the same digest.
func importDir(ctx context.Context, dsn, dir string) (bool, error) {
	catalog, err := data.LoadCatalogDir(ctx, dir)
	if err != nil {
		return false, fmt.Errorf("loading spell catalog: %w", err)
	}
	slog.Info("catalog parsed", "dir", dir, "spells", catalog.Len(), "digest", catalog.Digest())

	if err := db.RunMigrations(ctx, dsn); err != nil {
		return false, fmt.Errorf("running migrations: %w", err)
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		return false, err
	}
	defer database.Close()

	imported, err := database.Spells().ImportCatalog(ctx, catalog, dir)
	if err != nil {
		return false, fmt.Errorf("importing catalog: %w", err)
	}
	if !imported {
		slog.Info("catalog unchanged, nothing imported", "digest", catalog.Digest())
		return false, nil
	}

	slog.Info("catalog imported", "spells", catalog.Len(), "digest", catalog.Digest())
	return true, nil
}
