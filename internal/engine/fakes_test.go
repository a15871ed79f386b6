package engine

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"ahsniper/internal/events"
	"ahsniper/internal/ocr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// patternAt returns a deterministic nonlinear pixel value. Plain
// gradients are useless for correlation tests because normalized
// cross-correlation ignores additive shifts, and the seed must change
// the pattern's shape, not just offset it, so templates with different
// seeds do not match each other.
func patternAt(x, y, seed int) uint8 {
	return uint8((x*x*(7+seed) + y*y*13 + x*y*3 + seed*29) % 251)
}

// paintPattern fills rect of the RGBA image with the seeded pattern,
// equal in all channels so the grayscale conversion is the identity.
func paintPattern(img *image.RGBA, rect image.Rectangle, seed int) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			v := patternAt(x-rect.Min.X, y-rect.Min.Y, seed)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
}

func patternTemplate(w, h, seed int) *image.Gray {
	tmpl := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tmpl.SetGray(x, y, color.Gray{Y: patternAt(x, y, seed)})
		}
	}
	return tmpl
}

// writeTemplatePNG writes a seeded pattern template to dir and returns
// its path.
func writeTemplatePNG(t *testing.T, dir, name string, w, h, seed int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, patternTemplate(w, h, seed)); err != nil {
		t.Fatalf("encode template: %v", err)
	}
	return path
}

// fakeCapturer serves a fixed frame. A non-nil err makes every Capture
// fail; failures > 0 fails only the first N calls.
type fakeCapturer struct {
	frame    *image.RGBA
	err      error
	failures int
	displays []image.Rectangle
	captures int
}

func (f *fakeCapturer) Capture(rect image.Rectangle) (*image.RGBA, error) {
	f.captures++
	if f.err != nil {
		return nil, f.err
	}
	if f.captures <= f.failures {
		return nil, errors.New("transient capture failure")
	}
	return f.frame, nil
}

func (f *fakeCapturer) Displays() []image.Rectangle {
	return f.displays
}

// fakeReader returns canned boxes for every Read call.
type fakeReader struct {
	boxes []ocr.Box
	err   error
	reads int
}

func (f *fakeReader) Read(img image.Image) ([]ocr.Box, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ocr.Box, len(f.boxes))
	copy(out, f.boxes)
	return out, nil
}

func (f *fakeReader) Close() error { return nil }

// fakeController records input calls and can fail on demand.
type fakeController struct {
	mu       sync.Mutex
	clicks   []image.Point
	presses  []string
	clickErr error
	pressErr error
}

func (f *fakeController) Click(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks = append(f.clicks, image.Point{X: x, Y: y})
	return nil
}

func (f *fakeController) Press(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pressErr != nil {
		return f.pressErr
	}
	f.presses = append(f.presses, key)
	return nil
}

func (f *fakeController) clickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clicks)
}

// recordingBus is a synchronous events.Bus that stores everything
// published, so tests can assert on event order without a dispatcher
// goroutine in the way.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Subscribe(events.EventType, events.EventHandler) events.SubscriptionID {
	return 0
}
func (b *recordingBus) Unsubscribe(events.SubscriptionID) {}
func (b *recordingBus) Stop()                             {}

func (b *recordingBus) Publish(event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) ofType(t events.EventType) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
