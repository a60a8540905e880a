package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityProjectiveApply(t *testing.T) {
	id := IdentityProjective()
	p := Point2D{X: 12.5, Y: -3.25}
	assert.Equal(t, p, id.Apply(p))
}

func TestProjectiveApplyPerspective(t *testing.T) {
	// Scale by 2 with a mild perspective term.
	m := ProjectiveTransform{
		2, 0, 0,
		0, 2, 0,
		0.001, 0, 1,
	}
	p := m.Apply(Point2D{X: 100, Y: 50})
	assert.InDelta(t, 200.0/1.1, p.X, 1e-9)
	assert.InDelta(t, 100.0/1.1, p.Y, 1e-9)
}

func TestProjectiveApplyVanishingWeight(t *testing.T) {
	m := ProjectiveTransform{
		1, 0, 0,
		0, 1, 0,
		1, 0, 0,
	}
	p := m.Apply(Point2D{X: 0, Y: 5})
	assert.True(t, math.IsInf(p.X, 1))
}

func TestProjectiveInverseRoundTrip(t *testing.T) {
	m := ProjectiveTransform{
		1.2, 0.1, 30,
		-0.2, 0.9, -12,
		0.0001, 0.0002, 1,
	}
	inv, ok := m.Inverse()
	require.True(t, ok)

	for _, p := range []Point2D{{X: 0, Y: 0}, {X: 640, Y: 480}, {X: 13.7, Y: 99.1}} {
		back := inv.Apply(m.Apply(p))
		assert.InDelta(t, p.X, back.X, 1e-8)
		assert.InDelta(t, p.Y, back.Y, 1e-8)
	}
}

func TestProjectiveInverseSingular(t *testing.T) {
	_, ok := ProjectiveTransform{}.Inverse()
	assert.False(t, ok)
}

func TestProjectiveCompose(t *testing.T) {
	scale := ProjectiveTransform{2, 0, 0, 0, 2, 0, 0, 0, 1}
	shift := ProjectiveTransform{1, 0, 10, 0, 1, 20, 0, 0, 1}

	// shift∘scale: scale first, then shift.
	m := shift.Compose(scale)
	p := m.Apply(Point2D{X: 3, Y: 4})
	assert.InDelta(t, 16.0, p.X, 1e-12)
	assert.InDelta(t, 28.0, p.Y, 1e-12)
}

func TestQuadCentroid(t *testing.T) {
	q := Quad{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}}
	assert.Equal(t, Point2D{X: 5, Y: 5}, q.Centroid())
}

func TestQuadHasCoincidentPoints(t *testing.T) {
	q := Quad{{X: 1, Y: 1}, {X: 10, Y: 0}, {X: 1, Y: 1}, {X: 10, Y: 10}}
	assert.True(t, q.HasCoincidentPoints(1e-6))

	q[2] = Point2D{X: 0, Y: 10}
	assert.False(t, q.HasCoincidentPoints(1e-6))
}

func TestQuadHasCollinearTriple(t *testing.T) {
	q := Quad{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 5, Y: 5}}
	assert.True(t, q.HasCollinearTriple(1e-6))

	q[2] = Point2D{X: 20, Y: 3}
	assert.False(t, q.HasCollinearTriple(1e-6))
}
