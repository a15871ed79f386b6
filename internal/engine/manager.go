package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ahsniper/internal/catalog"
	"ahsniper/internal/config"
	"ahsniper/internal/cv"
	"ahsniper/internal/events"
	"ahsniper/internal/input"
	"ahsniper/internal/ocr"
)

// ErrNoTemplates is returned by Start when no catalog entry survived
// template loading; there is nothing to scan for, so no run begins.
var ErrNoTemplates = errors.New("no usable item templates")

// ErrAlreadyRunning is returned by Start while a previous run is still
// winding down.
var ErrAlreadyRunning = errors.New("a run is already active")

// Manager starts and stops detection runs. At most one run is active at
// a time; a new run cannot begin until the previous worker goroutine
// has fully exited.
type Manager struct {
	cfg        *config.Settings
	capturer   cv.Capturer
	reader     ocr.Reader
	controller input.Controller
	bus        events.Bus
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(
	cfg *config.Settings,
	capturer cv.Capturer,
	reader ocr.Reader,
	controller input.Controller,
	bus events.Bus,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		capturer:   capturer,
		reader:     reader,
		controller: controller,
		bus:        bus,
		logger:     logger,
	}
}

// Start loads templates for the given catalog entries and launches the
// worker goroutine. Rejected entries are reported as events; if none
// survive, Start fails with ErrNoTemplates and no run begins.
func (m *Manager) Start(ctx context.Context, entries []catalog.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		select {
		case <-m.done:
			// Previous run fully exited; its slot is free.
		default:
			return ErrAlreadyRunning
		}
	}

	store := NewTemplateStore(m.logger)
	items, rejected := store.Load(entries)
	for _, r := range rejected {
		m.bus.Publish(events.NewItemRejectedEvent("manager", r.Name, r.Reason))
	}
	if len(items) == 0 {
		return fmt.Errorf("%w (%d entries rejected)", ErrNoTemplates, len(rejected))
	}

	quota := NewQuotaTracker()
	for _, item := range items {
		quota.Register(item.Name, item.Quantity)
	}

	worker := NewWorker(
		m.cfg,
		items,
		quota,
		m.capturer,
		NewPriceExtractor(m.reader, m.cfg, m.logger),
		NewDispatcher(m.controller, quota, m.logger),
		m.bus,
		m.logger,
	)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		defer cancel()
		worker.Run(runCtx)
	}()

	m.logger.Info("run launched", "items", len(items), "rejected", len(rejected))
	return nil
}

// Stop requests cancellation and blocks until the worker goroutine has
// exited. Safe to call when no run is active.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a run is currently active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the current run finishes. It returns immediately
// when no run was ever started.
func (m *Manager) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}
