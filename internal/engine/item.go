package engine

import "image"

// Item is the engine's private copy of one tracked catalog entry plus
// its loaded grayscale template. The catalog may be edited freely while
// a run is active; the run only ever sees these copies.
type Item struct {
	Name     string
	Enabled  bool
	MaxPrice int // 0 = no ceiling
	Quantity int
	Template *image.Gray
}
