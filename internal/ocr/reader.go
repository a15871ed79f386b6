package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Box is one recognized word: its text, a confidence in [0,1] and its
// bounding rectangle in the coordinate space of the supplied image.
type Box struct {
	Text       string
	Confidence float64
	Bounds     image.Rectangle
}

// Reader recognizes text in an image with word-level detail.
type Reader interface {
	Read(img image.Image) ([]Box, error)
	Close() error
}

// TesseractReader is the production Reader backed by a single
// gosseract client. Tesseract handles are not goroutine-safe, so all
// reads are serialized on a mutex.
type TesseractReader struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractReader creates a reader restricted to the given language
// and character whitelist. An empty whitelist recognizes everything.
func NewTesseractReader(language, whitelist string) (*TesseractReader, error) {
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	if whitelist != "" {
		if err := client.SetWhitelist(whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR whitelist: %w", err)
		}
	}
	return &TesseractReader{client: client}, nil
}

func (r *TesseractReader) Read(img image.Image) ([]Box, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode OCR input: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load OCR input: %w", err)
	}

	raw, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("text recognition failed: %w", err)
	}

	boxes := make([]Box, 0, len(raw))
	for _, b := range raw {
		boxes = append(boxes, Box{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Bounds:     b.Box,
		})
	}
	return boxes, nil
}

func (r *TesseractReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}
