package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/magic2d/internal/ai"
	"github.com/udisondev/magic2d/internal/config"
	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/db"
	"github.com/udisondev/magic2d/internal/game/magic"
	"github.com/udisondev/magic2d/internal/game/magic/luamod"
)

const DefaultConfigPath = "config/engine.yaml"

// statsInterval — период лога со статистикой симуляции.
const statsInterval = 2 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := flag.String("config", DefaultConfigPath, "path to engine config")
	flag.Parse()
	if p := os.Getenv("MAGIC2D_CONFIG"); p != "" {
		*cfgPath = p
	}

	// Load config FIRST to determine log level
	cfg, err := config.LoadEngine(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading engine config: %w", err)
	}

	logLevel := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("magic2d simulation starting",
		"log_level", cfg.LogLevel,
		"tick_ms", cfg.TickMs,
		"simulation_ticks", cfg.SimulationTicks)

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("spell catalog loaded", "spells", catalog.Len(), "digest", catalog.Digest())

	mods, err := luamod.LoadDir(ctx, cfg.ModsDir, slog.Default())
	if err != nil {
		return fmt.Errorf("loading lua mods: %w", err)
	}
	mods.Install()
	slog.Info("lua mods installed", "behaviors", len(mods.Behaviors()), "dir", cfg.ModsDir)

	arena, err := newDemoArena(catalog)
	if err != nil {
		return fmt.Errorf("building arena: %w", err)
	}

	mgr := magic.NewManager(arena.world,
		magic.WithCatalog(catalog),
		magic.WithSpawner(arena.world),
		magic.WithSoundPlayer(magic.SoundFunc(func(name string) {
			slog.Debug("sound", "name", name)
		})),
		magic.WithMessenger(magic.MessageFunc(func(text string) {
			slog.Info("message", "text", text)
		})),
		magic.WithCellSize(cfg.CollisionCellSize),
		magic.WithViewRadius(cfg.ViewRadius),
		magic.WithScreenShake(cfg.ScreenShakeMs),
	)

	ticks := ai.NewTickManager(cfg.TickMs, mgr, arena)
	for _, c := range arena.casters(mgr) {
		ticks.Register(c)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return ticks.Start(gctx, cfg.SimulationTicks)
	})
	g.Go(func() error {
		return reportStats(gctx, ticks, arena)
	})

	err = g.Wait()
	mgr.CancelAll(magic.EndCancelled)

	slog.Info("magic2d simulation stopped",
		"ticks", ticks.Ticks(),
		"waves", arena.Waves(),
		"enemies_alive", arena.EnemiesAlive())

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadCatalog reads spells from PostgreSQL or from the YAML directory.
func loadCatalog(ctx context.Context, cfg config.Engine) (*data.Catalog, error) {
	if !cfg.UseDatabase {
		c, err := data.LoadCatalogDir(ctx, cfg.CatalogDir)
		if err != nil {
			return nil, fmt.Errorf("loading spell catalog: %w", err)
		}
		return c, nil
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	spells := database.Spells()
	version, err := spells.LatestVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, errors.New("no spell catalog imported, run spellimport first")
	}

	c, err := spells.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if c.Digest() != version.Digest {
		slog.Warn("catalog digest differs from recorded version",
			"recorded", version.Digest,
			"loaded", c.Digest())
	}
	return c, nil
}

func reportStats(ctx context.Context, ticks *ai.TickManager, arena *demoArena) error {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			casts, rejected := arena.castStats()
			slog.Info("simulation stats",
				"ticks", ticks.Ticks(),
				"waves", arena.Waves(),
				"enemies_alive", arena.EnemiesAlive(),
				"casts", casts,
				"rejected", rejected)
		}
	}
}
