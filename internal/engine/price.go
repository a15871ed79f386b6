package engine

import (
	"image"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"ahsniper/internal/config"
	"ahsniper/internal/cv"
	"ahsniper/internal/ocr"
)

// PriceWhitelist is the character set the OCR backend is restricted to
// when reading prices; anything else is noise for this purpose.
const PriceWhitelist = "0123456789$, "

// PriceExtractor reads the listing price displayed below a matched
// item name and decides whether it clears the item's ceiling.
type PriceExtractor struct {
	reader ocr.Reader
	cfg    *config.Settings
	logger *slog.Logger
}

func NewPriceExtractor(reader ocr.Reader, cfg *config.Settings, logger *slog.Logger) *PriceExtractor {
	return &PriceExtractor{reader: reader, cfg: cfg, logger: logger}
}

// Extract runs OCR over the price search area below matched (the
// template's bounding box in frame coordinates) and returns the parsed
// price. found is false when no plausible price text exists; accepted
// is true when the price clears the item's ceiling (a ceiling of zero
// accepts everything). A backend failure is returned as err so the
// caller can skip the item and keep the run alive.
func (p *PriceExtractor) Extract(frame *image.RGBA, matched image.Rectangle, item Item) (price int, found, accepted bool, err error) {
	search := image.Rect(
		matched.Min.X+p.cfg.PriceSearchOffsetX,
		matched.Min.Y+p.cfg.PriceSearchOffsetY,
		matched.Min.X+p.cfg.PriceSearchOffsetX+p.cfg.PriceSearchWidth,
		matched.Min.Y+p.cfg.PriceSearchOffsetY+p.cfg.PriceSearchHeight,
	).Intersect(frame.Bounds())
	if search.Empty() {
		p.logger.Debug("price search area outside frame", "item", item.Name)
		return 0, false, false, nil
	}

	crop := cv.CropRegion(frame, search)
	boxes, err := p.reader.Read(crop)
	if err != nil {
		return 0, false, false, err
	}

	// The recognizer reports boxes relative to the crop origin; shift
	// them back into frame coordinates before the geometric filters.
	for i := range boxes {
		boxes[i].Bounds = boxes[i].Bounds.Add(search.Min)
	}

	// When several tokens survive the filters the rightmost one is the
	// price column; scan from the right and take the first survivor.
	sort.Slice(boxes, func(i, j int) bool {
		return boxes[i].Bounds.Min.X > boxes[j].Bounds.Min.X
	})

	minLeft := matched.Min.X + p.cfg.PriceMinLeftOffset
	bandTop := matched.Max.Y + p.cfg.PriceBandTop
	bandBottom := matched.Max.Y + p.cfg.PriceBandBottom

	for _, box := range boxes {
		if box.Confidence < p.cfg.PriceOCRConfidence {
			continue
		}
		digits := cleanPriceText(box.Text)
		if digits == "" {
			continue
		}
		if box.Bounds.Min.X < minLeft {
			continue
		}
		if box.Bounds.Min.Y < bandTop || box.Bounds.Min.Y > bandBottom {
			continue
		}
		value, perr := strconv.Atoi(digits)
		if perr != nil {
			// Overflow or stray token; treat as "no price visible".
			p.logger.Debug("price token unparseable", "item", item.Name, "text", box.Text)
			return 0, false, false, nil
		}
		accepted = item.MaxPrice == 0 || value <= item.MaxPrice
		return value, true, accepted, nil
	}
	return 0, false, false, nil
}

// cleanPriceText strips currency decoration and returns the remaining
// text when it is purely digits, otherwise empty.
func cleanPriceText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return ""
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return cleaned
}
