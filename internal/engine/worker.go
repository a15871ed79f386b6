package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"ahsniper/internal/config"
	"ahsniper/internal/cv"
	"ahsniper/internal/events"
	"ahsniper/internal/input"
)

// StopReason explains how a run ended.
type StopReason int

const (
	StopRequested StopReason = iota
	StopAllTargetsReached
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopRequested:
		return "stopped by request"
	case StopAllTargetsReached:
		return "all targets reached"
	case StopError:
		return "stopped on error"
	default:
		return "unknown"
	}
}

// interlockBackoff is how long the worker waits after the safety
// interlock trips before touching the mouse again.
const interlockBackoff = time.Second

// Worker runs one detection-and-action session: capture, match, read
// price, click. It owns the scan loop and is driven entirely on its own
// goroutine; everything it needs is handed in at construction.
type Worker struct {
	cfg      *config.Settings
	items    []Item
	quota    *QuotaTracker
	capturer cv.Capturer
	price    *PriceExtractor
	dispatch *Dispatcher
	bus      events.Bus
	logger   *slog.Logger

	scanRegion  image.Rectangle
	lastRefresh time.Time
}

func NewWorker(
	cfg *config.Settings,
	items []Item,
	quota *QuotaTracker,
	capturer cv.Capturer,
	price *PriceExtractor,
	dispatch *Dispatcher,
	bus events.Bus,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		cfg:      cfg,
		items:    items,
		quota:    quota,
		capturer: capturer,
		price:    price,
		dispatch: dispatch,
		bus:      bus,
		logger:   logger,
	}
}

// Run executes the scan loop until the context is cancelled, every
// target is reached or an unrecoverable error occurs. It always emits
// exactly one run_finished event, panics included.
func (w *Worker) Run(ctx context.Context) (reason StopReason) {
	allReached := false
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panicked", "panic", r)
			w.bus.Publish(events.NewRunErrorEvent("worker", fmt.Sprintf("internal error: %v", r)))
			reason = StopError
			allReached = false
		}
		w.status(reason.String())
		w.bus.Publish(events.NewRunFinishedEvent("worker", allReached))
		w.logger.Info("run finished", "reason", reason, "all_targets_reached", allReached)
	}()

	if len(w.items) == 0 {
		w.bus.Publish(events.NewRunErrorEvent("worker", "no items to scan"))
		return StopError
	}

	region, err := w.resolveScanRegion()
	if err != nil {
		w.logger.Error("cannot resolve scan region", "error", err)
		w.bus.Publish(events.NewRunErrorEvent("worker", err.Error()))
		return StopError
	}
	w.scanRegion = region
	// The refresh cooldown starts counting from run start, so the first
	// refresh only fires after a full idle interval.
	w.lastRefresh = time.Now()
	w.logger.Info("run started", "items", len(w.items), "region", region)
	w.status(fmt.Sprintf("scanning %d item(s)", len(w.items)))

	for {
		if ctx.Err() != nil {
			return StopRequested
		}

		frame, err := w.capturer.Capture(w.scanRegion)
		if err != nil {
			w.logger.Warn("screen capture failed", "error", err)
			if !w.sleep(ctx, w.cfg.CaptureRetry) {
				return StopRequested
			}
			continue
		}
		gray := cv.ToGray(frame)

		actionTaken := false
		for _, item := range w.quota.ActiveItems(w.items) {
			if ctx.Err() != nil {
				return StopRequested
			}
			if !w.processItem(ctx, frame, gray, item) {
				continue
			}
			actionTaken = true
			if !w.sleep(ctx, w.cfg.PostActionPause) {
				return StopRequested
			}
		}

		if w.quota.AllDone() {
			allReached = true
			return StopAllTargetsReached
		}
		if ctx.Err() != nil {
			return StopRequested
		}
		if !actionTaken {
			if !w.idle(ctx) {
				return StopRequested
			}
		}
	}
}

// processItem handles one active item on the current frame. It reports
// whether the buy gesture completed; a skipped item (no match, price
// rejected, OCR or input failure) is false.
func (w *Worker) processItem(ctx context.Context, frame *image.RGBA, gray *image.Gray, item Item) bool {
	result := cv.MatchTemplate(gray, item.Template, w.cfg.MatchThreshold)
	if !result.Found {
		return false
	}
	tb := item.Template.Bounds()
	matched := image.Rectangle{
		Min: result.Location,
		Max: result.Location.Add(image.Point{X: tb.Dx(), Y: tb.Dy()}),
	}
	w.logger.Debug("template matched", "item", item.Name, "at", result.Location, "score", result.Score)

	price, found, accepted, err := w.price.Extract(frame, matched, item)
	if err != nil {
		w.logger.Warn("price read failed", "item", item.Name, "error", err)
		return false
	}
	if !found {
		w.logger.Debug("no price visible", "item", item.Name)
		return false
	}
	if !accepted {
		w.logger.Info("price above ceiling", "item", item.Name, "price", price, "ceiling", item.MaxPrice)
		return false
	}

	global := matched.Add(w.scanRegion.Min)
	newBought, ok, err := w.dispatch.Perform(ctx, global, item)
	if err != nil {
		if errors.Is(err, input.ErrInterlock) {
			w.logger.Warn("input interlock tripped, backing off", "item", item.Name)
			w.sleep(ctx, interlockBackoff)
			return false
		}
		w.logger.Warn("action failed", "item", item.Name, "error", err)
		return false
	}
	if !ok {
		return false
	}

	w.bus.Publish(events.NewActionPerformedEvent("worker", item.Name, price, newBought))
	w.status(fmt.Sprintf("bought %s for %d (%d of %d)", item.Name, price, newBought, item.Quantity))
	return true
}

// idle runs between fruitless scan passes: a refresh click when one is
// configured and due, otherwise the short loop pause. Returns false on
// cancellation.
func (w *Worker) idle(ctx context.Context) bool {
	if w.cfg.RefreshPoint != nil && time.Since(w.lastRefresh) >= w.cfg.MinRefreshInterval {
		w.clickRefresh(ctx)
		return w.sleep(ctx, w.cfg.RefreshPause)
	}
	return w.sleep(ctx, w.cfg.LoopPause)
}

// clickRefresh presses the configured refresh button so the listing
// page shows fresh inventory. Failures are logged and swallowed; a
// missed refresh just means scanning stale listings a little longer.
func (w *Worker) clickRefresh(ctx context.Context) {
	p := *w.cfg.RefreshPoint
	err := input.Gesture(func() error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return w.dispatch.controller.Click(p.X, p.Y)
	})
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("refresh click failed", "error", err)
		}
		return
	}
	w.lastRefresh = time.Now()
	w.logger.Debug("refresh clicked", "at", p)
}

// resolveScanRegion validates the configured region against the live
// display layout, falling back to the primary display when the config
// is absent or out of bounds.
func (w *Worker) resolveScanRegion() (image.Rectangle, error) {
	displays := w.capturer.Displays()
	if len(displays) == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays detected")
	}
	configured := w.cfg.ScanRegion
	if configured.Dx() > 0 && configured.Dy() > 0 {
		if configured.In(cv.VirtualBounds(displays)) {
			return configured, nil
		}
		w.logger.Warn("configured scan region outside desktop, using primary display", "configured", configured)
	}
	return displays[0], nil
}

// sleep waits for d or until cancellation, whichever comes first, and
// reports whether the full wait elapsed.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (w *Worker) status(text string) {
	w.bus.Publish(events.NewStatusChangedEvent("worker", text))
}
