package config

import (
	"fmt"
	"image"
	"time"

	"gopkg.in/ini.v1"
)

// Settings holds everything the detection engine needs at run start.
// Loaded from Settings.ini; zero/absent values fall back to defaults
// and Validate clamps the rest.
type Settings struct {
	// Paths
	TemplateDir string
	CatalogPath string
	HistoryPath string
	LogDir      string
	Debug       bool

	// Scan region in global screen coordinates. A zero-size rectangle
	// means "use the primary display".
	ScanRegion image.Rectangle

	// Template matching
	MatchThreshold float64 // minimum [0,1] score to act on

	// Price extraction. The search rectangle is anchored at the matched
	// template's top-left corner plus (OffsetX, OffsetY).
	PriceSearchOffsetX  int
	PriceSearchOffsetY  int
	PriceSearchWidth    int
	PriceSearchHeight   int
	PriceOCRConfidence  float64 // minimum [0,1] word confidence
	PriceMinLeftOffset  int     // candidate left edge >= template left + this
	PriceBandTop        int     // candidate top >= template bottom + this
	PriceBandBottom     int     // candidate top <= template bottom + this

	// Refresh gesture. Nil point disables the periodic refresh click.
	RefreshPoint       *image.Point
	MinRefreshInterval time.Duration
	RefreshPause       time.Duration

	// Pacing
	PostActionPause time.Duration
	LoopPause       time.Duration
	CaptureRetry    time.Duration

	// OCR language passed to the recognition backend.
	OCRLanguage string
}

// Default returns settings matching the stock game layout.
func Default() *Settings {
	return &Settings{
		TemplateDir:        "templates",
		CatalogPath:        "items.yaml",
		HistoryPath:        "data/history.db",
		LogDir:             "logs",
		MatchThreshold:     0.85,
		PriceSearchOffsetX: 0,
		PriceSearchOffsetY: 15,
		PriceSearchWidth:   220,
		PriceSearchHeight:  40,
		PriceOCRConfidence: 0.40,
		PriceMinLeftOffset: 10,
		PriceBandTop:       0,
		PriceBandBottom:    25,
		MinRefreshInterval: 30 * time.Second,
		RefreshPause:       3 * time.Second,
		PostActionPause:    2 * time.Second,
		LoopPause:          250 * time.Millisecond,
		CaptureRetry:       time.Second,
		OCRLanguage:        "eng",
	}
}

// Load reads Settings.ini from path. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	s := Default()

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	paths := cfg.Section("Paths")
	s.TemplateDir = paths.Key("TemplateDir").MustString(s.TemplateDir)
	s.CatalogPath = paths.Key("CatalogPath").MustString(s.CatalogPath)
	s.HistoryPath = paths.Key("HistoryPath").MustString(s.HistoryPath)
	s.LogDir = paths.Key("LogDir").MustString(s.LogDir)
	s.Debug = paths.Key("Debug").MustBool(false)

	scan := cfg.Section("Scan")
	left := scan.Key("Left").MustInt(0)
	top := scan.Key("Top").MustInt(0)
	width := scan.Key("Width").MustInt(0)
	height := scan.Key("Height").MustInt(0)
	if width > 0 && height > 0 {
		s.ScanRegion = image.Rect(left, top, left+width, top+height)
	}
	s.MatchThreshold = scan.Key("MatchThreshold").MustFloat64(s.MatchThreshold)

	price := cfg.Section("Price")
	s.PriceSearchOffsetX = price.Key("SearchOffsetX").MustInt(s.PriceSearchOffsetX)
	s.PriceSearchOffsetY = price.Key("SearchOffsetY").MustInt(s.PriceSearchOffsetY)
	s.PriceSearchWidth = price.Key("SearchWidth").MustInt(s.PriceSearchWidth)
	s.PriceSearchHeight = price.Key("SearchHeight").MustInt(s.PriceSearchHeight)
	s.PriceOCRConfidence = price.Key("OCRConfidence").MustFloat64(s.PriceOCRConfidence)
	s.PriceMinLeftOffset = price.Key("MinLeftOffset").MustInt(s.PriceMinLeftOffset)
	s.PriceBandTop = price.Key("BandTop").MustInt(s.PriceBandTop)
	s.PriceBandBottom = price.Key("BandBottom").MustInt(s.PriceBandBottom)
	s.OCRLanguage = price.Key("OCRLanguage").MustString(s.OCRLanguage)

	refresh := cfg.Section("Refresh")
	if refresh.HasKey("X") && refresh.HasKey("Y") {
		p := image.Point{
			X: refresh.Key("X").MustInt(0),
			Y: refresh.Key("Y").MustInt(0),
		}
		s.RefreshPoint = &p
	}
	s.MinRefreshInterval = refresh.Key("MinInterval").MustDuration(s.MinRefreshInterval)
	s.RefreshPause = refresh.Key("Pause").MustDuration(s.RefreshPause)

	timing := cfg.Section("Timing")
	s.PostActionPause = timing.Key("PostActionPause").MustDuration(s.PostActionPause)
	s.LoopPause = timing.Key("LoopPause").MustDuration(s.LoopPause)
	s.CaptureRetry = timing.Key("CaptureRetry").MustDuration(s.CaptureRetry)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate clamps values to safe ranges. It never rejects a config
// outright; a nonsensical scan region falls back to display detection.
func (s *Settings) Validate() error {
	if s.MatchThreshold <= 0 || s.MatchThreshold > 1 {
		s.MatchThreshold = 0.85
	}
	if s.PriceOCRConfidence < 0 || s.PriceOCRConfidence > 1 {
		s.PriceOCRConfidence = 0.40
	}
	if s.PriceSearchWidth <= 0 {
		s.PriceSearchWidth = 220
	}
	if s.PriceSearchHeight <= 0 {
		s.PriceSearchHeight = 40
	}
	if s.PriceBandBottom < s.PriceBandTop {
		s.PriceBandBottom = s.PriceBandTop
	}
	if s.LoopPause <= 0 {
		s.LoopPause = 250 * time.Millisecond
	}
	if s.CaptureRetry <= 0 {
		s.CaptureRetry = time.Second
	}
	if s.MinRefreshInterval <= 0 {
		s.MinRefreshInterval = 30 * time.Second
	}
	if s.ScanRegion.Dx() < 0 || s.ScanRegion.Dy() < 0 {
		s.ScanRegion = image.Rectangle{}
	}
	if s.OCRLanguage == "" {
		s.OCRLanguage = "eng"
	}
	return nil
}
