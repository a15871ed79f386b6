package engine

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"ahsniper/internal/catalog"
	"ahsniper/internal/events"
)

func TestManagerStartRequiresTemplates(t *testing.T) {
	bus := &recordingBus{}
	m := NewManager(newTestConfig(), &fakeCapturer{}, &fakeReader{}, &fakeController{}, bus, testLogger())

	err := m.Start(context.Background(), []catalog.Item{
		{Name: "Ghost", Enabled: true, Quantity: 1, TemplatePath: "nope/absent.png"},
	})
	if !errors.Is(err, ErrNoTemplates) {
		t.Fatalf("err = %v, want ErrNoTemplates", err)
	}
	if m.Running() {
		t.Error("run active after failed start")
	}
	if len(bus.ofType(events.EventTypeItemRejected)) != 1 {
		t.Error("rejection not reported")
	}
}

func TestManagerSingleRunAtATime(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "sword.png", 24, 10, 1)
	entries := []catalog.Item{{Name: "Sword", Enabled: true, Quantity: 1, TemplatePath: path}}

	// A permanently failing capturer keeps the run alive until Stop.
	cfg := newTestConfig()
	capt := &fakeCapturer{err: errors.New("no display"), displays: []image.Rectangle{image.Rect(0, 0, 100, 100)}}
	m := NewManager(cfg, capt, &fakeReader{}, &fakeController{}, &recordingBus{}, testLogger())

	if err := m.Start(context.Background(), entries); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if !m.Running() {
		t.Fatal("run not active after start")
	}
	if err := m.Start(context.Background(), entries); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second start err = %v, want ErrAlreadyRunning", err)
	}

	m.Stop()
	if m.Running() {
		t.Fatal("run still active after stop")
	}

	// The slot frees up once the previous worker has exited.
	if err := m.Start(context.Background(), entries); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(newTestConfig(), &fakeCapturer{}, &fakeReader{}, &fakeController{}, &recordingBus{}, testLogger())
	m.Stop() // must not panic or block
	m.Wait()
}

func TestManagerRunFinishesOnItsOwn(t *testing.T) {
	dir := t.TempDir()
	frame, _, reader := sceneFixture()
	entries := []catalog.Item{
		{Name: "Sword", Enabled: true, MaxPrice: 500, Quantity: 1,
			TemplatePath: writeTemplatePNG(t, dir, "sword.png", 40, 12, 1)},
	}
	capt := &fakeCapturer{frame: frame, displays: []image.Rectangle{frame.Bounds()}}
	bus := &recordingBus{}
	m := NewManager(newTestConfig(), capt, reader, &fakeController{}, bus, testLogger())

	if err := m.Start(context.Background(), entries); err != nil {
		t.Fatalf("start: %v", err)
	}

	waited := make(chan struct{})
	go func() { m.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish on its own")
	}

	finished := bus.ofType(events.EventTypeRunFinished)
	if len(finished) != 1 || !finished[0].Data["all_targets_reached"].(bool) {
		t.Fatalf("finished events = %+v, want one success", finished)
	}
}
