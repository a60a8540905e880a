package register

import (
	"fmt"
	"math"

	"github.com/olive-groves/butterfly-registrator/internal/raster"
)

// Recipe records how a moving image was fitted onto the target canvas:
// the post-resize dimensions, the zero padding added at the bottom and
// right, and the canvas (target) dimensions. A recipe computed from the
// first moving image is replayed verbatim over batch images so all outputs
// share identical pixel geometry.
type Recipe struct {
	ResizedWidth  int
	ResizedHeight int
	PadRows       int
	PadCols       int
	CanvasWidth   int
	CanvasHeight  int
}

// CanvasSize returns the output canvas dimensions.
func (r Recipe) CanvasSize() (int, int) {
	return r.CanvasWidth, r.CanvasHeight
}

// Normalize fits a moving image onto the target's canvas, preserving the
// moving image's aspect ratio: resize to match the target's width or height
// (whichever the aspect ratios dictate), then zero-pad the bottom and right
// edges up to the full canvas. The channel count passes through unchanged.
func Normalize(buf *raster.Buffer, target raster.Geometry) (*raster.Buffer, Recipe, error) {
	g := buf.Geometry()
	if g.Width <= 0 || g.Height <= 0 {
		return nil, Recipe{}, fmt.Errorf("moving image has zero area (%dx%d)", g.Width, g.Height)
	}
	if target.Width <= 0 || target.Height <= 0 {
		return nil, Recipe{}, fmt.Errorf("target geometry has zero area (%dx%d)", target.Width, target.Height)
	}

	var resizedW, resizedH int
	if g.Aspect() > target.Aspect() {
		// Moving is wider than the target: fit widths.
		resizedW = target.Width
		resizedH = int(math.Round(float64(resizedW) / g.Aspect()))
	} else {
		// Moving is narrower or equi-aspect: fit heights.
		resizedH = target.Height
		resizedW = int(math.Round(float64(resizedH) * g.Aspect()))
	}
	if resizedW > target.Width {
		resizedW = target.Width
	}
	if resizedH > target.Height {
		resizedH = target.Height
	}

	recipe := Recipe{
		ResizedWidth:  resizedW,
		ResizedHeight: resizedH,
		PadRows:       target.Height - resizedH,
		PadCols:       target.Width - resizedW,
		CanvasWidth:   target.Width,
		CanvasHeight:  target.Height,
	}

	out, err := ApplyRecipe(buf, recipe)
	if err != nil {
		return nil, Recipe{}, err
	}
	return out, recipe, nil
}

// ApplyRecipe resizes and pads a buffer using an already computed recipe,
// without re-deriving the fit from the buffer's own aspect ratio. Batch
// replay depends on this: every image in a batch gets the exact resize and
// padding of the original moving image.
func ApplyRecipe(buf *raster.Buffer, r Recipe) (*raster.Buffer, error) {
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("image has zero area (%dx%d)", buf.Width, buf.Height)
	}
	if r.ResizedWidth <= 0 || r.ResizedHeight <= 0 || r.CanvasWidth <= 0 || r.CanvasHeight <= 0 {
		return nil, fmt.Errorf("invalid normalization recipe %+v", r)
	}

	resized := raster.Resize(buf, r.ResizedWidth, r.ResizedHeight)

	out := raster.New(r.CanvasWidth, r.CanvasHeight, resized.Channels)
	rowBytes := resized.Width * resized.Channels
	for y := 0; y < resized.Height; y++ {
		copy(out.Pix[out.Offset(0, y):out.Offset(0, y)+rowBytes], resized.Pix[y*rowBytes:(y+1)*rowBytes])
	}
	return out, nil
}
