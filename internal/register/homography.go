package register

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/olive-groves/butterfly-registrator/internal/raster"
	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

// Tolerances for detecting control point quads that cannot determine a
// transform. Coordinates are in pixels, so these only reject genuinely
// collapsed configurations, not steep but valid quads.
const (
	coincidentEps = 1e-6
	collinearEps  = 1e-6
)

// Solve computes the projective transform that maps each source point
// exactly onto its corresponding destination point. Four correspondences
// determine the transform's 8 free parameters exactly, so the 8x8 system is
// square and has no least-squares residual.
//
// Returns ErrDegenerateConfiguration when any two points coincide or any
// three points are collinear on either side, or when the linear system is
// otherwise singular.
func Solve(src, dst geometry.Quad) (geometry.ProjectiveTransform, error) {
	if src.HasCoincidentPoints(coincidentEps) || dst.HasCoincidentPoints(coincidentEps) ||
		src.HasCollinearTriple(collinearEps) || dst.HasCollinearTriple(collinearEps) {
		return geometry.IdentityProjective(), ErrDegenerateConfiguration
	}

	// Each correspondence contributes two rows:
	//   x' = (h0 X + h1 Y + h2) / (h6 X + h7 Y + 1)
	//   y' = (h3 X + h4 Y + h5) / (h6 X + h7 Y + 1)
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		r := 2 * i

		a.Set(r, 0, sx)
		a.Set(r, 1, sy)
		a.Set(r, 2, 1)
		a.Set(r, 6, -sx*dx)
		a.Set(r, 7, -sy*dx)
		b.SetVec(r, dx)

		a.Set(r+1, 3, sx)
		a.Set(r+1, 4, sy)
		a.Set(r+1, 5, 1)
		a.Set(r+1, 6, -sx*dy)
		a.Set(r+1, 7, -sy*dy)
		b.SetVec(r+1, dy)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return geometry.IdentityProjective(), fmt.Errorf("%w: %v", ErrDegenerateConfiguration, err)
	}

	return geometry.ProjectiveTransform{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}, nil
}

// Warp maps every destination pixel through the inverse of m into source
// space and samples the buffer bilinearly. Destination pixels whose source
// coordinate falls outside the buffer stay zero (transparent when an alpha
// channel is present, black otherwise). The channel count is preserved.
func Warp(buf *raster.Buffer, m geometry.ProjectiveTransform, outWidth, outHeight int) (*raster.Buffer, error) {
	if outWidth <= 0 || outHeight <= 0 {
		return nil, fmt.Errorf("invalid output dimensions %dx%d", outWidth, outHeight)
	}
	inv, ok := m.Inverse()
	if !ok {
		return nil, fmt.Errorf("%w: transform is not invertible", ErrDegenerateConfiguration)
	}

	channels := buf.Channels
	srcW, srcH := float64(buf.Width), float64(buf.Height)
	out := raster.New(outWidth, outHeight, channels)

	for y := 0; y < outHeight; y++ {
		for x := 0; x < outWidth; x++ {
			s := inv.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
			// The negated comparison also rejects NaN coordinates.
			if !(s.X >= 0 && s.X < srcW && s.Y >= 0 && s.Y < srcH) {
				continue
			}

			x0, y0 := int(s.X), int(s.Y)
			x1, y1 := x0+1, y0+1
			if x1 >= buf.Width {
				x1 = buf.Width - 1
			}
			if y1 >= buf.Height {
				y1 = buf.Height - 1
			}
			fx, fy := s.X-float64(x0), s.Y-float64(y0)

			i00 := buf.Offset(x0, y0)
			i10 := buf.Offset(x1, y0)
			i01 := buf.Offset(x0, y1)
			i11 := buf.Offset(x1, y1)
			o := out.Offset(x, y)
			for c := 0; c < channels; c++ {
				v := (1-fx)*(1-fy)*float64(buf.Pix[i00+c]) +
					fx*(1-fy)*float64(buf.Pix[i10+c]) +
					(1-fx)*fy*float64(buf.Pix[i01+c]) +
					fx*fy*float64(buf.Pix[i11+c])
				out.Pix[o+c] = uint8(v + 0.5)
			}
		}
	}
	return out, nil
}
