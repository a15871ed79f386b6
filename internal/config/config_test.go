package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Default()
	if s.MatchThreshold != d.MatchThreshold || s.LoopPause != d.LoopPause {
		t.Errorf("missing file did not yield defaults: %+v", s)
	}
	if !s.ScanRegion.Empty() {
		t.Errorf("default scan region = %v, want empty", s.ScanRegion)
	}
	if s.RefreshPoint != nil {
		t.Error("refresh point set without config")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.ini")
	content := `
[Paths]
TemplateDir = tpl
CatalogPath = my-items.yaml
Debug = true

[Scan]
Left = 100
Top = 200
Width = 640
Height = 480
MatchThreshold = 0.9

[Price]
SearchWidth = 300
OCRConfidence = 0.6

[Refresh]
X = 1800
Y = 40
MinInterval = 45s

[Timing]
PostActionPause = 1s
LoopPause = 100ms
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TemplateDir != "tpl" || s.CatalogPath != "my-items.yaml" || !s.Debug {
		t.Errorf("paths = %+v", s)
	}
	if s.ScanRegion != image.Rect(100, 200, 740, 680) {
		t.Errorf("scan region = %v", s.ScanRegion)
	}
	if s.MatchThreshold != 0.9 {
		t.Errorf("threshold = %v", s.MatchThreshold)
	}
	if s.PriceSearchWidth != 300 || s.PriceOCRConfidence != 0.6 {
		t.Errorf("price settings = %+v", s)
	}
	// Untouched keys keep their defaults.
	if s.PriceSearchHeight != 40 || s.PriceMinLeftOffset != 10 {
		t.Errorf("price defaults lost: %+v", s)
	}
	if s.RefreshPoint == nil || *s.RefreshPoint != (image.Point{X: 1800, Y: 40}) {
		t.Errorf("refresh point = %v", s.RefreshPoint)
	}
	if s.MinRefreshInterval != 45*time.Second {
		t.Errorf("min refresh interval = %v", s.MinRefreshInterval)
	}
	if s.PostActionPause != time.Second || s.LoopPause != 100*time.Millisecond {
		t.Errorf("pacing = %+v", s)
	}
}

func TestValidateClamps(t *testing.T) {
	s := Default()
	s.MatchThreshold = 1.5
	s.PriceOCRConfidence = -1
	s.PriceSearchWidth = 0
	s.PriceBandTop = 10
	s.PriceBandBottom = 5
	s.LoopPause = 0
	s.OCRLanguage = ""

	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.MatchThreshold != 0.85 {
		t.Errorf("threshold = %v", s.MatchThreshold)
	}
	if s.PriceOCRConfidence != 0.40 {
		t.Errorf("confidence = %v", s.PriceOCRConfidence)
	}
	if s.PriceSearchWidth != 220 {
		t.Errorf("search width = %v", s.PriceSearchWidth)
	}
	if s.PriceBandBottom != s.PriceBandTop {
		t.Errorf("band = [%d,%d]", s.PriceBandTop, s.PriceBandBottom)
	}
	if s.LoopPause != 250*time.Millisecond {
		t.Errorf("loop pause = %v", s.LoopPause)
	}
	if s.OCRLanguage != "eng" {
		t.Errorf("language = %q", s.OCRLanguage)
	}
}
