package cv

import (
	"image"
	"image/color"
	"testing"
)

// paintPattern fills a rectangle with a deterministic non-uniform
// pattern so correlation has variance to work with.
func paintPattern(img *image.Gray, rect image.Rectangle, seed int) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			v := uint8((x*x*7 + y*y*13 + x*y*3 + seed*29) % 251)
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func TestMatchTemplateFindsEmbeddedPattern(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 120, 80))
	paintPattern(frame, frame.Bounds(), 3)

	tmpl := image.NewGray(image.Rect(0, 0, 20, 12))
	paintPattern(tmpl, tmpl.Bounds(), 99)

	// Stamp the template into the frame at a known location.
	at := image.Pt(47, 33)
	for y := 0; y < 12; y++ {
		for x := 0; x < 20; x++ {
			frame.SetGray(at.X+x, at.Y+y, tmpl.GrayAt(x, y))
		}
	}

	res := MatchTemplate(frame, tmpl, 0.85)
	if !res.Found {
		t.Fatalf("expected a match, got score %.3f", res.Score)
	}
	if res.Location != at {
		t.Errorf("expected location %v, got %v", at, res.Location)
	}
	if res.Score < 0.99 {
		t.Errorf("exact embed should score ~1.0, got %.3f", res.Score)
	}
}

func TestMatchTemplateRepeatedFramesIdempotent(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 60, 40))
	paintPattern(frame, frame.Bounds(), 1)
	tmpl := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			tmpl.SetGray(x, y, frame.GrayAt(20+x, 15+y))
		}
	}

	first := MatchTemplate(frame, tmpl, 0.85)
	second := MatchTemplate(frame, tmpl, 0.85)
	if first != second {
		t.Errorf("repeated identical frames gave different results: %+v vs %+v", first, second)
	}
	if !first.Found || first.Location != image.Pt(20, 15) {
		t.Errorf("expected match at (20,15), got %+v", first)
	}
}

func TestMatchTemplateDegenerateInputs(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 30, 30))
	paintPattern(frame, frame.Bounds(), 2)

	tests := []struct {
		name  string
		frame *image.Gray
		tmpl  *image.Gray
	}{
		{"nil template", frame, nil},
		{"nil frame", nil, image.NewGray(image.Rect(0, 0, 5, 5))},
		{"empty template", frame, image.NewGray(image.Rectangle{})},
		{"template larger than frame", frame, image.NewGray(image.Rect(0, 0, 50, 50))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := MatchTemplate(tt.frame, tt.tmpl, 0.85)
			if res.Found {
				t.Errorf("expected no match, got %+v", res)
			}
			if res.Score != 0 {
				t.Errorf("expected zero score, got %.3f", res.Score)
			}
		})
	}
}

func TestToGrayAndCropRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 0, A: 255})
		}
	}

	gray := ToGray(img)
	if gray.Bounds() != img.Bounds() {
		t.Errorf("gray bounds %v != source bounds %v", gray.Bounds(), img.Bounds())
	}
	// Spot check the luminance formula.
	want := uint8((int(3*30)*299 + int(5*30)*587) / 1000)
	if got := gray.GrayAt(3, 5).Y; got != want {
		t.Errorf("gray at (3,5) = %d, want %d", got, want)
	}

	rect := image.Rect(2, 2, 6, 6)
	crop := CropRegion(img, rect)
	if crop.Bounds() != rect {
		t.Errorf("crop bounds %v, want %v", crop.Bounds(), rect)
	}
	if crop.RGBAAt(3, 3) != img.RGBAAt(3, 3) {
		t.Errorf("crop pixel mismatch at (3,3)")
	}
}
