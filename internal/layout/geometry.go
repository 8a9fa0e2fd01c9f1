package layout

import "github.com/hpungsan/autord/internal/slide"

// Canvas size in inches. All slides are 16:9.
const (
	SlideWidth  = 10.0
	SlideHeight = 5.625
)

// Box is a position and size in inches.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// GridToInches scales custom-layout grid units to the canvas. Horizontal
// values are twelfths of the slide width and vertical values twelfths of
// the slide height.
func GridToInches(x, y, w, h int) Box {
	return Box{
		X: gridX(x),
		Y: gridY(y),
		W: gridX(w),
		H: gridY(h),
	}
}

func gridX(g int) float64 { return float64(g) / slide.GridColumns * SlideWidth }
func gridY(g int) float64 { return float64(g) / slide.GridColumns * SlideHeight }

// Percent returns b as percentages of the canvas, for HTML previews.
func (b Box) Percent() Box {
	return Box{
		X: b.X / SlideWidth * 100,
		Y: b.Y / SlideHeight * 100,
		W: b.W / SlideWidth * 100,
		H: b.H / SlideHeight * 100,
	}
}
