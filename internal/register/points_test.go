package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

func newTestSet() *ControlPointSet {
	canvas := geometry.Size{Width: 1000, Height: 500}
	return NewControlPointSet(canvas, canvas, DefaultPlacementOffset)
}

func TestNewControlPointSetDefaultPlacements(t *testing.T) {
	s := newTestSet()

	want := [4]geometry.Point2D{
		{X: 300, Y: 150},
		{X: 700, Y: 150},
		{X: 300, Y: 350},
		{X: 700, Y: 350},
	}
	for i, p := range want {
		got, err := s.Point(SideTarget, i+1)
		require.NoError(t, err)
		assert.Equal(t, p, got, "target point %d", i+1)

		got, err = s.Point(SideMoving, i+1)
		require.NoError(t, err)
		assert.Equal(t, p, got, "moving point %d", i+1)
	}
}

func TestMovePointRecordsTravel(t *testing.T) {
	s := newTestSet()

	require.NoError(t, s.MovePoint(SideMoving, 2, geometry.Point2D{X: 710, Y: 160}))

	got, err := s.Point(SideMoving, 2)
	require.NoError(t, err)
	assert.Equal(t, geometry.Point2D{X: 710, Y: 160}, got)

	rec, err := s.Travel(SideMoving, 2)
	require.NoError(t, err)
	assert.True(t, rec.Recorded)
	assert.Equal(t, geometry.Point2D{X: 700, Y: 150}, rec.Start)
	assert.Equal(t, geometry.Point2D{X: 710, Y: 160}, rec.End)

	// Other points and the other side are untouched.
	assert.False(t, s.CanUndo(SideMoving, 1))
	assert.False(t, s.CanUndo(SideTarget, 2))
}

func TestUndoRedoCycle(t *testing.T) {
	s := newTestSet()
	require.NoError(t, s.MovePoint(SideTarget, 1, geometry.Point2D{X: 100, Y: 100}))

	assert.True(t, s.CanUndo(SideTarget, 1))
	assert.False(t, s.CanRedo(SideTarget, 1))

	require.NoError(t, s.Undo(SideTarget, 1))
	got, _ := s.Point(SideTarget, 1)
	assert.Equal(t, geometry.Point2D{X: 300, Y: 150}, got)
	assert.False(t, s.CanUndo(SideTarget, 1))
	assert.True(t, s.CanRedo(SideTarget, 1))

	require.NoError(t, s.Redo(SideTarget, 1))
	got, _ = s.Point(SideTarget, 1)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, got)
	assert.True(t, s.CanUndo(SideTarget, 1))

	// Undo and redo keep alternating off the same record.
	require.NoError(t, s.Undo(SideTarget, 1))
	require.NoError(t, s.Redo(SideTarget, 1))
}

func TestUndoIsSingleLevel(t *testing.T) {
	s := newTestSet()
	require.NoError(t, s.MovePoint(SideTarget, 1, geometry.Point2D{X: 100, Y: 100}))
	require.NoError(t, s.Undo(SideTarget, 1))

	assert.ErrorIs(t, s.Undo(SideTarget, 1), ErrNothingToUndo)
}

func TestRedoRequiresPriorUndo(t *testing.T) {
	s := newTestSet()
	assert.ErrorIs(t, s.Redo(SideTarget, 1), ErrNothingToRedo)

	require.NoError(t, s.MovePoint(SideTarget, 1, geometry.Point2D{X: 100, Y: 100}))
	assert.ErrorIs(t, s.Redo(SideTarget, 1), ErrNothingToRedo)
}

func TestMoveWhileRedoPendingDiscardsStaleRedo(t *testing.T) {
	s := newTestSet()
	require.NoError(t, s.MovePoint(SideTarget, 1, geometry.Point2D{X: 100, Y: 100}))
	require.NoError(t, s.Undo(SideTarget, 1))
	require.True(t, s.CanRedo(SideTarget, 1))

	// A new move replaces the record; the old redo target is gone.
	require.NoError(t, s.MovePoint(SideTarget, 1, geometry.Point2D{X: 50, Y: 50}))
	assert.False(t, s.CanRedo(SideTarget, 1))
	assert.True(t, s.CanUndo(SideTarget, 1))

	require.NoError(t, s.Undo(SideTarget, 1))
	got, _ := s.Point(SideTarget, 1)
	assert.Equal(t, geometry.Point2D{X: 300, Y: 150}, got)
}

func TestSetXAndSetYTravelLikeMoves(t *testing.T) {
	s := newTestSet()

	require.NoError(t, s.SetX(SideMoving, 3, 42))
	got, _ := s.Point(SideMoving, 3)
	assert.Equal(t, geometry.Point2D{X: 42, Y: 350}, got)

	require.NoError(t, s.SetY(SideMoving, 3, 99))
	got, _ = s.Point(SideMoving, 3)
	assert.Equal(t, geometry.Point2D{X: 42, Y: 99}, got)

	// Undo reverts only the y edit, the last move.
	require.NoError(t, s.Undo(SideMoving, 3))
	got, _ = s.Point(SideMoving, 3)
	assert.Equal(t, geometry.Point2D{X: 42, Y: 350}, got)
}

func TestSetAllClearsHistory(t *testing.T) {
	s := newTestSet()
	require.NoError(t, s.MovePoint(SideTarget, 1, geometry.Point2D{X: 1, Y: 2}))

	var pairs [4]ControlPointPair
	for i := range pairs {
		pairs[i] = ControlPointPair{
			Target: geometry.Point2D{X: float64(i), Y: 0},
			Moving: geometry.Point2D{X: 0, Y: float64(i)},
		}
	}
	s.SetAll(pairs)

	assert.Equal(t, pairs, s.Pairs())
	for i := 1; i <= 4; i++ {
		assert.False(t, s.CanUndo(SideTarget, i))
		assert.False(t, s.CanUndo(SideMoving, i))
		assert.False(t, s.CanRedo(SideTarget, i))
	}
}

func TestSetSideLeavesOtherSideAlone(t *testing.T) {
	s := newTestSet()
	require.NoError(t, s.MovePoint(SideMoving, 1, geometry.Point2D{X: 5, Y: 5}))

	pts := [4]geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}}
	s.SetSide(SideTarget, pts)

	got, _ := s.Point(SideTarget, 2)
	assert.Equal(t, geometry.Point2D{X: 2, Y: 2}, got)

	// The moving side keeps its position and its undo history.
	got, _ = s.Point(SideMoving, 1)
	assert.Equal(t, geometry.Point2D{X: 5, Y: 5}, got)
	assert.True(t, s.CanUndo(SideMoving, 1))
}

func TestPointIndexRange(t *testing.T) {
	s := newTestSet()
	_, err := s.Point(SideTarget, 0)
	assert.Error(t, err)
	_, err = s.Point(SideTarget, 5)
	assert.Error(t, err)
	assert.Error(t, s.MovePoint(SideTarget, 5, geometry.Point2D{}))
	assert.False(t, s.CanUndo(SideTarget, 0))
}

func TestChangeListenerFires(t *testing.T) {
	s := newTestSet()
	var changes []PointChange
	s.OnChange(func(c PointChange) { changes = append(changes, c) })

	require.NoError(t, s.MovePoint(SideMoving, 4, geometry.Point2D{X: 1, Y: 1}))
	require.NoError(t, s.Undo(SideMoving, 4))

	require.Len(t, changes, 2)
	assert.Equal(t, PointChange{Side: SideMoving, Index: 4}, changes[0])
	assert.Equal(t, PointChange{Side: SideMoving, Index: 4}, changes[1])
}
