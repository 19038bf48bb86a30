package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/internal/config"
	"github.com/jwebster45206/odyssey-engine/internal/events"
	"github.com/jwebster45206/odyssey-engine/internal/logger"
	"github.com/jwebster45206/odyssey-engine/internal/storage"
	"github.com/jwebster45206/odyssey-engine/internal/telemetry"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
)

func main() {
	logPath := flag.String("log", "odyssey-console.log", "file to write logs to")
	loadID := flag.String("load", "", "resume the save with this id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.SetupWriter(cfg, logFile)

	ctx := context.Background()
	tracing, err := telemetry.Init(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start tracing: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = tracing.Shutdown(context.Background())
	}()

	files := storage.NewFileStore(cfg.DataDir, log)

	catalog, err := files.LoadQuests(ctx)
	if err != nil {
		logger.Content(log).Error("Failed to load quests", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to load quests: %v\n", err)
		os.Exit(1)
	}
	seed, err := files.LoadSeed(ctx)
	if err != nil {
		logger.Content(log).Error("Failed to load seed", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to load seed: %v\n", err)
		os.Exit(1)
	}
	if cfg.PlayerName != "" {
		seed.PlayerName = cfg.PlayerName
	}

	saves, err := storage.NewSaveStore(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open save store: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = saves.Close()
	}()

	local := events.NewLocal(8)
	notifier := events.Multi{local}
	if rs, ok := saves.(*storage.RedisStore); ok {
		notifier = append(notifier, events.NewBroadcaster(rs.Client(), log))
	}

	sess, err := session.New(ctx, seed, session.Deps{
		Worlds:   files,
		Catalog:  catalog,
		Notifier: notifier,
		Logger:   log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start game: %v\n", err)
		os.Exit(1)
	}

	if *loadID != "" {
		if err := resume(ctx, sess, saves, *loadID); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load save: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(NewConsoleUI(sess, saves, local.C()),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func resume(ctx context.Context, sess *session.Session, saves storage.SaveStore, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("bad save id %q: %w", rawID, err)
	}
	snap, err := saves.Load(ctx, id)
	if err != nil {
		return err
	}
	return sess.Restore(ctx, *snap)
}
