package engine

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"ahsniper/internal/catalog"
	"ahsniper/internal/cv"
)

// minTemplateDim is the smallest usable template edge in pixels.
// Anything below this cannot produce a meaningful correlation window.
const minTemplateDim = 3

// Rejection records why a catalog entry was excluded from a run.
type Rejection struct {
	Name   string
	Reason string
}

// TemplateStore loads catalog entries into run-ready items.
type TemplateStore struct {
	logger *slog.Logger
}

func NewTemplateStore(logger *slog.Logger) *TemplateStore {
	return &TemplateStore{logger: logger}
}

// Load decodes the template image for every enabled catalog entry and
// returns the usable items alongside the rejected ones. Entries with a
// missing name, a duplicate name, an unreadable template file or a
// template smaller than 3x3 pixels are rejected, never fatal.
func (s *TemplateStore) Load(entries []catalog.Item) ([]Item, []Rejection) {
	var (
		loaded   []Item
		rejected []Rejection
		seen     = make(map[string]bool)
	)
	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		if entry.Name == "" {
			rejected = append(rejected, Rejection{Name: "(unnamed)", Reason: "entry has no name"})
			continue
		}
		if seen[entry.Name] {
			rejected = append(rejected, Rejection{Name: entry.Name, Reason: "duplicate name"})
			continue
		}
		seen[entry.Name] = true

		tmpl, err := s.loadTemplate(entry.TemplatePath)
		if err != nil {
			rejected = append(rejected, Rejection{Name: entry.Name, Reason: err.Error()})
			s.logger.Warn("template rejected", "item", entry.Name, "reason", err)
			continue
		}
		loaded = append(loaded, Item{
			Name:     entry.Name,
			Enabled:  true,
			MaxPrice: entry.MaxPrice,
			Quantity: entry.Quantity,
			Template: tmpl,
		})
	}
	return loaded, rejected
}

func (s *TemplateStore) loadTemplate(path string) (*image.Gray, error) {
	if path == "" {
		return nil, fmt.Errorf("no template path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < minTemplateDim || bounds.Dy() < minTemplateDim {
		return nil, fmt.Errorf("template too small: %dx%d", bounds.Dx(), bounds.Dy())
	}
	return cv.ToGrayImage(img), nil
}
