package engine

// Progress counts successful actions against the per-item target.
type Progress struct {
	Bought int
	Target int
}

// QuotaTracker keeps per-item purchase counts for a single run. It is
// only touched from the worker goroutine, so it carries no lock.
type QuotaTracker struct {
	progress map[string]*Progress
}

func NewQuotaTracker() *QuotaTracker {
	return &QuotaTracker{progress: make(map[string]*Progress)}
}

// Register adds an item with the given target. Targets below one are
// clamped to one so a misconfigured quantity can never make an item
// trivially complete.
func (q *QuotaTracker) Register(name string, target int) {
	if target < 1 {
		target = 1
	}
	q.progress[name] = &Progress{Target: target}
}

// Increment records one successful action and returns the new count.
func (q *QuotaTracker) Increment(name string) int {
	p, ok := q.progress[name]
	if !ok {
		return 0
	}
	p.Bought++
	return p.Bought
}

// IsItemDone reports whether the item has reached its target.
// Unregistered items count as done so they are never acted on.
func (q *QuotaTracker) IsItemDone(name string) bool {
	p, ok := q.progress[name]
	if !ok {
		return true
	}
	return p.Bought >= p.Target
}

// AllDone reports whether every registered item reached its target.
// An empty tracker is never done; a run with nothing to track must not
// look like a success.
func (q *QuotaTracker) AllDone() bool {
	if len(q.progress) == 0 {
		return false
	}
	for _, p := range q.progress {
		if p.Bought < p.Target {
			return false
		}
	}
	return true
}

// Get returns the progress for one item.
func (q *QuotaTracker) Get(name string) (Progress, bool) {
	p, ok := q.progress[name]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// ActiveItems filters items down to the ones still worth scanning for:
// enabled, registered and below their target.
func (q *QuotaTracker) ActiveItems(items []Item) []Item {
	var active []Item
	for _, item := range items {
		if !item.Enabled || q.IsItemDone(item.Name) {
			continue
		}
		active = append(active, item)
	}
	return active
}
