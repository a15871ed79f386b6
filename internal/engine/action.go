package engine

import (
	"context"
	"image"
	"log/slog"

	"ahsniper/internal/input"
)

// Dispatcher performs the buy gesture for a matched item: one click on
// the listing followed by escape to close the purchase dialog, all
// under the process-wide input lock.
type Dispatcher struct {
	controller input.Controller
	quota      *QuotaTracker
	logger     *slog.Logger
}

func NewDispatcher(controller input.Controller, quota *QuotaTracker, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{controller: controller, quota: quota, logger: logger}
}

// Perform clicks the center of bboxGlobal (global screen coordinates)
// and presses escape. Cancellation is honored between sub-steps, so a
// stop request never leaves the dialog half-handled without at least
// attempting the close. On success the item's quota is advanced and
// the new count returned. An interlock trip surfaces as
// input.ErrInterlock for the caller to back off on.
func (d *Dispatcher) Perform(ctx context.Context, bboxGlobal image.Rectangle, item Item) (newBought int, ok bool, err error) {
	if d.quota.IsItemDone(item.Name) {
		return 0, false, nil
	}
	center := image.Point{
		X: bboxGlobal.Min.X + bboxGlobal.Dx()/2,
		Y: bboxGlobal.Min.Y + bboxGlobal.Dy()/2,
	}

	err = input.Gesture(func() error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if cerr := d.controller.Click(center.X, center.Y); cerr != nil {
			return cerr
		}
		if ctx.Err() != nil {
			// Stop requested mid-gesture; still close the dialog so the
			// screen is left in a sane state.
			_ = d.controller.Press("esc")
			return ctx.Err()
		}
		return d.controller.Press("esc")
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, nil
		}
		return 0, false, err
	}

	newBought = d.quota.Increment(item.Name)
	d.logger.Info("action performed",
		"item", item.Name,
		"at", center,
		"bought", newBought,
	)
	return newBought, true, nil
}
