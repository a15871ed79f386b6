package selector

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ahsniper/internal/catalog"
	"ahsniper/internal/cv"
	"ahsniper/internal/ocr"
)

// Selector captures a screen region into a new item template: the
// pixels are saved as a grayscale PNG under the template directory and
// the region's text becomes the suggested item name.
type Selector struct {
	capturer    cv.Capturer
	reader      ocr.Reader
	catalog     *catalog.Catalog
	templateDir string
	logger      *slog.Logger
}

func New(capturer cv.Capturer, reader ocr.Reader, cat *catalog.Catalog, templateDir string, logger *slog.Logger) *Selector {
	return &Selector{
		capturer:    capturer,
		reader:      reader,
		catalog:     cat,
		templateDir: templateDir,
		logger:      logger,
	}
}

// Capture grabs rect from the screen, stores it as a template and
// appends a catalog entry. When name is empty the region's own text is
// used; when OCR finds nothing usable the entry is named "item". The
// new entry starts disabled so a stray capture never joins the next
// run unreviewed.
func (s *Selector) Capture(rect image.Rectangle, name string, maxPrice, quantity int) (*catalog.Item, error) {
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, fmt.Errorf("selection %v has no area", rect)
	}
	img, err := s.capturer.Capture(rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture selection: %w", err)
	}

	if name == "" {
		name = s.suggestName(img)
	}
	if name == "" {
		name = "item"
	}
	name = s.uniqueName(name)

	path, err := s.saveTemplate(img, name)
	if err != nil {
		return nil, err
	}

	item := catalog.Item{
		Name:         name,
		Enabled:      false,
		MaxPrice:     maxPrice,
		Quantity:     quantity,
		TemplatePath: path,
	}
	if err := s.catalog.Add(item); err != nil {
		return nil, fmt.Errorf("failed to add catalog entry: %w", err)
	}
	if err := s.catalog.Save(); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}
	s.logger.Info("template captured", "item", name, "path", path, "region", rect)
	return &item, nil
}

// suggestName reads the captured region and joins the confident words.
func (s *Selector) suggestName(img image.Image) string {
	boxes, err := s.reader.Read(img)
	if err != nil {
		s.logger.Warn("label recognition failed", "error", err)
		return ""
	}
	var words []string
	for _, b := range boxes {
		if b.Confidence >= 0.5 && strings.TrimSpace(b.Text) != "" {
			words = append(words, strings.TrimSpace(b.Text))
		}
	}
	return strings.Join(words, " ")
}

// uniqueName appends a numeric suffix until the name is free in the
// catalog.
func (s *Selector) uniqueName(name string) string {
	if _, ok := s.catalog.Get(name); !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", name, i)
		if _, ok := s.catalog.Get(candidate); !ok {
			return candidate
		}
	}
}

func (s *Selector) saveTemplate(img *image.RGBA, name string) (string, error) {
	if err := os.MkdirAll(s.templateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create template directory: %w", err)
	}
	fileName := catalog.SanitizeFileName(name) + ".png"
	path := filepath.Join(s.templateDir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create template file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, cv.ToGray(img)); err != nil {
		return "", fmt.Errorf("failed to encode template: %w", err)
	}
	return path, nil
}
