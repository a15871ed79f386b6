package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ahsniper/internal/catalog"
)

func TestTemplateStoreLoad(t *testing.T) {
	dir := t.TempDir()
	good := writeTemplatePNG(t, dir, "sword.png", 24, 10, 1)
	tiny := writeTemplatePNG(t, dir, "tiny.png", 2, 2, 2)
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []catalog.Item{
		{Name: "Sword", Enabled: true, MaxPrice: 500, Quantity: 2, TemplatePath: good},
		{Name: "Sword", Enabled: true, Quantity: 1, TemplatePath: good},
		{Name: "", Enabled: true, Quantity: 1, TemplatePath: good},
		{Name: "Tiny", Enabled: true, Quantity: 1, TemplatePath: tiny},
		{Name: "Garbage", Enabled: true, Quantity: 1, TemplatePath: garbage},
		{Name: "Missing", Enabled: true, Quantity: 1, TemplatePath: filepath.Join(dir, "absent.png")},
		{Name: "NoPath", Enabled: true, Quantity: 1},
		{Name: "Disabled", Enabled: false, Quantity: 1, TemplatePath: good},
	}

	store := NewTemplateStore(testLogger())
	loaded, rejected := store.Load(entries)

	if len(loaded) != 1 {
		t.Fatalf("loaded = %d items, want 1", len(loaded))
	}
	item := loaded[0]
	if item.Name != "Sword" || item.MaxPrice != 500 || item.Quantity != 2 {
		t.Errorf("loaded item = %+v", item)
	}
	if b := item.Template.Bounds(); b.Dx() != 24 || b.Dy() != 10 {
		t.Errorf("template size = %dx%d, want 24x10", b.Dx(), b.Dy())
	}

	// Disabled entries are skipped silently, not rejected.
	if len(rejected) != 6 {
		t.Fatalf("rejected = %d entries, want 6: %+v", len(rejected), rejected)
	}
	reasons := make(map[string]string)
	for _, r := range rejected {
		reasons[r.Name] = r.Reason
	}
	if !strings.Contains(reasons["Sword"], "duplicate") {
		t.Errorf("duplicate reason = %q", reasons["Sword"])
	}
	if !strings.Contains(reasons["Tiny"], "too small") {
		t.Errorf("tiny reason = %q", reasons["Tiny"])
	}
	if !strings.Contains(reasons["NoPath"], "no template path") {
		t.Errorf("no-path reason = %q", reasons["NoPath"])
	}
	if _, ok := reasons["Disabled"]; ok {
		t.Error("disabled entry must not be rejected")
	}
}

func TestTemplateStoreLoadEmpty(t *testing.T) {
	store := NewTemplateStore(testLogger())
	loaded, rejected := store.Load(nil)
	if len(loaded) != 0 || len(rejected) != 0 {
		t.Fatalf("empty input: loaded=%d rejected=%d", len(loaded), len(rejected))
	}
}
