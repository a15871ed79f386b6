package history

import (
	"log/slog"

	"ahsniper/internal/events"
)

// Recorder persists run outcomes from bus events. Storage failures are
// logged, never propagated; losing a history row must not break a run.
type Recorder struct {
	db     *DB
	logger *slog.Logger
	subs   []events.SubscriptionID
	bus    events.Bus
}

// NewRecorder subscribes the recorder to purchase and run events.
func NewRecorder(db *DB, bus events.Bus, logger *slog.Logger) *Recorder {
	r := &Recorder{db: db, logger: logger, bus: bus}
	r.subs = append(r.subs,
		bus.Subscribe(events.EventTypeActionPerformed, r.onActionPerformed),
		bus.Subscribe(events.EventTypeRunFinished, r.onRunFinished),
	)
	return r
}

// Detach removes the recorder's subscriptions.
func (r *Recorder) Detach() {
	for _, id := range r.subs {
		r.bus.Unsubscribe(id)
	}
	r.subs = nil
}

func (r *Recorder) onActionPerformed(e events.Event) {
	item, _ := e.Data["item"].(string)
	price, _ := e.Data["price"].(int)
	count, _ := e.Data["bought_count"].(int)
	if err := r.db.RecordPurchase(item, price, count); err != nil {
		r.logger.Error("failed to record purchase", "item", item, "error", err)
	}
}

func (r *Recorder) onRunFinished(e events.Event) {
	reached, _ := e.Data["all_targets_reached"].(bool)
	if err := r.db.RecordRun(reached); err != nil {
		r.logger.Error("failed to record run", "error", err)
	}
}
