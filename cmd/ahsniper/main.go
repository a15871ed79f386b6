package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"ahsniper/internal/catalog"
	"ahsniper/internal/config"
	"ahsniper/internal/cv"
	"ahsniper/internal/engine"
	"ahsniper/internal/events"
	"ahsniper/internal/history"
	"ahsniper/internal/input"
	"ahsniper/internal/logging"
	"ahsniper/internal/ocr"
)

func main() {
	configPath := flag.String("config", "Settings.ini", "Path to settings file")
	catalogPath := flag.String("catalog", "", "Path to item catalog (overrides config)")
	dbPath := flag.String("db", "", "Path to purchase history database (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	if *dbPath != "" {
		cfg.HistoryPath = *dbPath
	}
	if *debug {
		cfg.Debug = true
	}

	logger, err := logging.NewLogger(cfg.Debug, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logging.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		logging.Flush()
		log.Fatalf("Error: %v", err)
	}
}

func run(cfg *config.Settings, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	db, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	reader, err := ocr.NewTesseractReader(cfg.OCRLanguage, engine.PriceWhitelist)
	if err != nil {
		return fmt.Errorf("failed to initialize text recognition: %w", err)
	}
	defer reader.Close()

	bus := events.NewBus(64, logger)
	defer bus.Stop()

	recorder := history.NewRecorder(db, bus, logger)
	defer recorder.Detach()

	// Console status line mirrors what the log already carries, but at
	// a glance and without the attribute noise.
	bus.Subscribe(events.EventTypeStatusChanged, func(e events.Event) {
		if text, ok := e.Data["text"].(string); ok {
			fmt.Println(text)
		}
	})

	manager := engine.NewManager(
		cfg,
		cv.NewScreenCapturer(),
		reader,
		input.NewRobotController(),
		bus,
		logger,
	)

	if err := manager.Start(ctx, cat.Snapshot()); err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		manager.Wait()
		// The run can finish on its own; release the signal context so
		// the shutdown goroutine exits too.
		stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		manager.Stop()
		return nil
	})

	logger.Info("press Ctrl+C to stop")
	return g.Wait()
}
