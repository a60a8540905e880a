// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
// The origin is the top-left corner of a canvas: x grows right, y grows down.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Quad is an ordered set of four points. Order is significant: quads are
// matched point-for-point when deriving a transform between them.
type Quad [4]Point2D

// Centroid computes the centroid (average position) of the quad's corners.
func (q Quad) Centroid() Point2D {
	var sumX, sumY float64
	for _, p := range q {
		sumX += p.X
		sumY += p.Y
	}
	return Point2D{X: sumX / 4, Y: sumY / 4}
}

// HasCoincidentPoints reports whether any two corners are closer than eps.
func (q Quad) HasCoincidentPoints(eps float64) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i].Distance(q[j]) < eps {
				return true
			}
		}
	}
	return false
}

// HasCollinearTriple reports whether any three corners lie on one line,
// within a tolerance on the triangle area they span.
func (q Quad) HasCollinearTriple(eps float64) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				a, b, c := q[i], q[j], q[k]
				area := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
				if math.Abs(area) < eps {
					return true
				}
			}
		}
	}
	return false
}
