package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cafelog/cmd"
	"cafelog/internal/db"
	"cafelog/internal/journal"
	"cafelog/internal/logger"
	"cafelog/internal/search"
	"cafelog/internal/store"
	"cafelog/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := cmd.ParseFlags(version, os.Args[1:])
	if err != nil {
		return err
	}
	if config.ShowVersion {
		fmt.Printf("cafelog %s\n", version)
		return nil
	}

	if err := logger.Init(config.LogPath, config.Debug); err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Sync()
	log := logger.GetLogger("main")
	log.Infow("starting cafelog", "version", version, "memory", config.Memory, "db", config.DBPath)

	var locator search.Locator
	if config.YelpAPIKey != "" {
		locator = search.NewYelpLocator(config.YelpAPIKey, config.Near)
	} else if !config.SearchEnabled {
		fmt.Fprintln(os.Stderr, "ℹ  Location search disabled in onboarding settings")
	} else {
		fmt.Fprintln(os.Stderr, "ℹ  No YELP_API_KEY set, location search disabled")
	}

	opts := ui.Options{
		Locator:   locator,
		PrefsPath: config.PrefsPath,
		Logger:    logger.GetLogger("ui"),
	}

	if config.Memory {
		s, err := store.New(journal.Seed(time.Now())...)
		if err != nil {
			return fmt.Errorf("failed to seed journal: %w", err)
		}
		opts.Store = s
	} else {
		database, err := db.Open(config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		s, err := store.New()
		if err != nil {
			return err
		}
		opts.Store = s
		opts.DB = database
		opts.Snapshotter = db.NewSnapshotter(database)
	}

	p := tea.NewProgram(ui.New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running app: %w", err)
	}

	// Background writes may not have finished when the program exits; write
	// the final state once more.
	if opts.Snapshotter != nil {
		if m, ok := final.(ui.Model); ok && m.Loaded() {
			snap := opts.Snapshotter
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := snap.Write(ctx, snap.Next(), opts.Store.List()); err != nil {
				log.Errorw("final save failed", "error", err)
				return fmt.Errorf("failed to save journal: %w", err)
			}
		}
	}
	log.Info("bye")
	return nil
}
