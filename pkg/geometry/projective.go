package geometry

import "math"

// ProjectiveTransform represents a 3x3 planar projective transformation
// (homography) in row-major order:
//
//	[m0 m1 m2]
//	[m3 m4 m5]
//	[m6 m7 m8]
//
// Points map through homogeneous coordinates, so the bottom row carries the
// perspective terms; for a plain affine transform m6 = m7 = 0 and m8 = 1.
type ProjectiveTransform [9]float64

// IdentityProjective returns the identity transform.
func IdentityProjective() ProjectiveTransform {
	return ProjectiveTransform{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Apply applies the transform to a point. A point whose homogeneous weight
// vanishes has no finite image; it is mapped far outside any real canvas.
func (t ProjectiveTransform) Apply(p Point2D) Point2D {
	w := t[6]*p.X + t[7]*p.Y + t[8]
	if w == 0 {
		return Point2D{X: math.Inf(1), Y: math.Inf(1)}
	}
	return Point2D{
		X: (t[0]*p.X + t[1]*p.Y + t[2]) / w,
		Y: (t[3]*p.X + t[4]*p.Y + t[5]) / w,
	}
}

// Compose returns this transform composed with another (this * other).
func (t ProjectiveTransform) Compose(other ProjectiveTransform) ProjectiveTransform {
	var r ProjectiveTransform
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += t[row*3+k] * other[k*3+col]
			}
			r[row*3+col] = sum
		}
	}
	return r
}

// Inverse returns the inverse transform, if it exists.
func (t ProjectiveTransform) Inverse() (ProjectiveTransform, bool) {
	a, b, c := t[0], t[1], t[2]
	d, e, f := t[3], t[4], t[5]
	g, h, i := t[6], t[7], t[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if math.Abs(det) < 1e-12 {
		return ProjectiveTransform{}, false
	}

	invDet := 1.0 / det
	return ProjectiveTransform{
		(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet,
		(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet,
		(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet,
	}, true
}
