package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/sacredcombat/internal/config"
	"github.com/udisondev/sacredcombat/internal/data"
	"github.com/udisondev/sacredcombat/internal/db"
	"github.com/udisondev/sacredcombat/internal/model"
	"github.com/udisondev/sacredcombat/internal/sim"
)

const ConfigPath = "config/battlesim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("SACREDCOMBAT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	slog.SetDefault(logger)

	slog.Info("battlesim starting",
		"log_level", cfg.LogLevel,
		"seed", cfg.Seed,
		"runs", cfg.Runs,
		"workers", cfg.Workers,
		"store", cfg.Store.Driver)

	content, err := data.Load(contentFS(cfg))
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	slog.Info("content loaded",
		"units", len(content.Units),
		"buffs", len(content.Buffs),
		"skills", len(content.Skills),
		"scripts", len(content.Scripts))

	store, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening report store: %w", err)
	}
	defer closeStore()

	runner := sim.NewRunner(content, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return playScripted(gctx, runner, store)
	})

	if cfg.Runs > 0 {
		g.Go(func() error {
			slog.Info("starting simulation", "runs", cfg.Runs, "workers", cfg.Workers)
			sum, err := runner.Run(gctx)
			if err != nil {
				return fmt.Errorf("simulation: %w", err)
			}
			fmt.Println(sum)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

// playScripted plays run 0 with the battle log on slog and persists every
// skill resolution when a store is configured.
func playScripted(ctx context.Context, runner *sim.Runner, store db.ReportStore) error {
	res, err := runner.Play(0, model.SlogSink{Logger: slog.Default()})
	if err != nil {
		return fmt.Errorf("scripted battle: %w", err)
	}
	slog.Info("scripted battle finished",
		"turns", res.Turns,
		"won", res.Won,
		"kills", res.Kills,
		"damage", res.Damage,
		"warnings", res.Warnings)

	if store == nil {
		return nil
	}
	for _, r := range res.Resolutions {
		id, err := store.Save(ctx, r)
		if err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		slog.Info("report saved", "id", id, "skill", r.SkillID, "turn", r.Turn)
	}
	return nil
}

func contentFS(cfg config.Sim) fs.FS {
	if cfg.ContentDir != "" {
		return os.DirFS(cfg.ContentDir)
	}
	return data.Default()
}

func newLogger(cfg config.Sim, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
