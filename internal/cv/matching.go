package cv

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Result contains template matching results. Score is the normalized
// cross-correlation mapped into [0,1]; Location is the top-left corner
// of the best window in the frame's coordinate space.
type Result struct {
	Found    bool
	Location image.Point
	Score    float64
}

// MatchTemplate slides tmpl over frame and returns the single best
// normalized cross-correlation window. A template that is empty or
// larger than the frame yields a zero-score non-match rather than an
// error; callers treat that as "skip this template".
func MatchTemplate(frame, tmpl *image.Gray, threshold float64) Result {
	if frame == nil || tmpl == nil {
		return Result{}
	}
	fb := frame.Bounds()
	tb := tmpl.Bounds()
	tw, th := tb.Dx(), tb.Dy()
	fw, fh := fb.Dx(), fb.Dy()
	if tw == 0 || th == 0 || fw < tw || fh < th {
		return Result{}
	}

	// Template statistics are constant across windows.
	n := float64(tw * th)
	var sumT, sumTT float64
	for y := 0; y < th; y++ {
		row := tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw]
		for _, v := range row {
			t := float64(v)
			sumT += t
			sumTT += t * t
		}
	}
	denomT := math.Sqrt(sumTT - sumT*sumT/n)

	best := Result{Score: 0}
	for y := 0; y <= fh-th; y++ {
		for x := 0; x <= fw-tw; x++ {
			var sumF, sumFF, sumFT float64
			for ty := 0; ty < th; ty++ {
				fRow := frame.Pix[(y+ty)*frame.Stride+x : (y+ty)*frame.Stride+x+tw]
				tRow := tmpl.Pix[ty*tmpl.Stride : ty*tmpl.Stride+tw]
				for tx := 0; tx < tw; tx++ {
					f := float64(fRow[tx])
					t := float64(tRow[tx])
					sumF += f
					sumFF += f * f
					sumFT += f * t
				}
			}
			denomF := math.Sqrt(sumFF - sumF*sumF/n)
			if denomF == 0 || denomT == 0 {
				continue
			}
			corr := (sumFT - sumF*sumT/n) / (denomF * denomT)
			score := (corr + 1.0) / 2.0
			if score > best.Score {
				best.Score = score
				best.Location = image.Point{X: fb.Min.X + x, Y: fb.Min.Y + y}
			}
		}
	}
	best.Found = best.Score >= threshold
	return best
}

// ToGray converts an RGBA frame to grayscale using the standard
// luminance weights.
func ToGray(img *image.RGBA) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			idx := (y-bounds.Min.Y)*img.Stride + (x-bounds.Min.X)*4
			r := img.Pix[idx]
			g := img.Pix[idx+1]
			b := img.Pix[idx+2]
			// Luminance formula
			v := uint8((int(r)*299 + int(g)*587 + int(b)*114) / 1000)
			gray.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return gray
}

// ToGrayImage converts an arbitrary decoded image to grayscale.
func ToGrayImage(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// CropRegion extracts a rectangular region from an image. The returned
// image keeps rect as its bounds.
func CropRegion(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	cropped := image.NewRGBA(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cropped.SetRGBA(x, y, img.RGBAAt(x, y))
		}
	}
	return cropped
}
