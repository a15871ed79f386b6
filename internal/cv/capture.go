package cv

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Capturer grabs raster frames from the screen. Implementations must be
// safe to use from the single engine goroutine that owns them; they are
// not required to be concurrency-safe.
type Capturer interface {
	// Capture grabs the given rectangle in global screen coordinates.
	Capture(rect image.Rectangle) (*image.RGBA, error)
	// Displays returns the bounds of every active display.
	Displays() []image.Rectangle
}

// ScreenCapturer is the production Capturer backed by the OS screenshot
// facility.
type ScreenCapturer struct{}

func NewScreenCapturer() *ScreenCapturer {
	return &ScreenCapturer{}
}

func (s *ScreenCapturer) Capture(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, fmt.Errorf("capture rectangle %v has no area", rect)
	}
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %w", rect, err)
	}
	return img, nil
}

func (s *ScreenCapturer) Displays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	bounds := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		bounds = append(bounds, screenshot.GetDisplayBounds(i))
	}
	return bounds
}

// VirtualBounds returns the union of all display bounds, i.e. the
// virtual desktop rectangle a configured scan region must fit inside.
func VirtualBounds(displays []image.Rectangle) image.Rectangle {
	var union image.Rectangle
	for _, d := range displays {
		union = union.Union(d)
	}
	return union
}
