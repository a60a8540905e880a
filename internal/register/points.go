package register

import (
	"fmt"

	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

// Side identifies which image a control point belongs to.
type Side int

const (
	SideTarget Side = iota
	SideMoving
)

func (s Side) String() string {
	switch s {
	case SideTarget:
		return "target"
	case SideMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// DefaultPlacementOffset is the proportional inset used for freshly created
// control points: points land at 30% and 70% of each canvas dimension,
// forming a centered rectangle.
const DefaultPlacementOffset = 0.3

// ControlPointPair couples target point i with moving point i. The
// correspondence is positional: pairs are never reordered, only their
// coordinates change.
type ControlPointPair struct {
	Target geometry.Point2D
	Moving geometry.Point2D
}

// TravelRecord keeps one level of move history for a single point: where it
// was before the most recent move and where that move put it.
type TravelRecord struct {
	Start    geometry.Point2D
	End      geometry.Point2D
	Recorded bool
}

// travelState tracks what the point's travel record can currently do.
type travelState int

const (
	stateDefault   travelState = iota // never moved
	stateUndoArmed                    // moved; undo available
	stateRedoArmed                    // undone; redo available
)

// PointChange describes a mutated control point. Index is 1-based.
type PointChange struct {
	Side  Side
	Index int
}

// ChangeListener is called after a control point changes position.
type ChangeListener func(PointChange)

// ControlPointSet holds exactly four ordered correspondence pairs together
// with per-point, per-side undo/redo records. All point indices in the API
// are 1-based (1..4), matching how the points are labeled on screen.
type ControlPointSet struct {
	pairs     [4]ControlPointPair
	travel    [2][4]TravelRecord
	state     [2][4]travelState
	listeners []ChangeListener
}

// NewControlPointSet creates a set with points at proportional offsets of
// the two canvases: (off,off), (1-off,off), (off,1-off), (1-off,1-off).
func NewControlPointSet(target, moving geometry.Size, offset float64) *ControlPointSet {
	placements := [4][2]float64{
		{offset, offset},
		{1 - offset, offset},
		{offset, 1 - offset},
		{1 - offset, 1 - offset},
	}
	s := &ControlPointSet{}
	for i, p := range placements {
		s.pairs[i] = ControlPointPair{
			Target: geometry.Point2D{X: target.Width * p[0], Y: target.Height * p[1]},
			Moving: geometry.Point2D{X: moving.Width * p[0], Y: moving.Height * p[1]},
		}
	}
	return s
}

// OnChange registers a listener notified after every point mutation.
func (s *ControlPointSet) OnChange(l ChangeListener) {
	s.listeners = append(s.listeners, l)
}

func (s *ControlPointSet) notify(side Side, index int) {
	for _, l := range s.listeners {
		l(PointChange{Side: side, Index: index})
	}
}

// Pairs returns the four correspondence pairs in order.
func (s *ControlPointSet) Pairs() [4]ControlPointPair {
	return s.pairs
}

// Point returns the position of point index on the given side.
func (s *ControlPointSet) Point(side Side, index int) (geometry.Point2D, error) {
	if err := checkIndex(index); err != nil {
		return geometry.Point2D{}, err
	}
	return *s.position(side, index-1), nil
}

// TargetQuad returns the four target-side points in order.
func (s *ControlPointSet) TargetQuad() geometry.Quad {
	var q geometry.Quad
	for i := range s.pairs {
		q[i] = s.pairs[i].Target
	}
	return q
}

// MovingQuad returns the four moving-side points in order.
func (s *ControlPointSet) MovingQuad() geometry.Quad {
	var q geometry.Quad
	for i := range s.pairs {
		q[i] = s.pairs[i].Moving
	}
	return q
}

// MovePoint records a move of point index on one side. The travel record's
// start is the position before this move, its end the new position; a move
// made while a redo was pending discards the stale redo target.
func (s *ControlPointSet) MovePoint(side Side, index int, pos geometry.Point2D) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	i := index - 1
	cur := s.position(side, i)

	s.travel[side][i] = TravelRecord{Start: *cur, End: pos, Recorded: true}
	s.state[side][i] = stateUndoArmed
	*cur = pos
	s.notify(side, index)
	return nil
}

// SetX moves only the x coordinate of a point, leaving y unchanged.
// Numeric field edits funnel through the same travel bookkeeping as drags.
func (s *ControlPointSet) SetX(side Side, index int, x float64) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	cur := s.position(side, index-1)
	return s.MovePoint(side, index, geometry.Point2D{X: x, Y: cur.Y})
}

// SetY moves only the y coordinate of a point, leaving x unchanged.
func (s *ControlPointSet) SetY(side Side, index int, y float64) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	cur := s.position(side, index-1)
	return s.MovePoint(side, index, geometry.Point2D{X: cur.X, Y: y})
}

// Undo restores the point to where it was before its last move. Valid only
// when that move has not already been undone.
func (s *ControlPointSet) Undo(side Side, index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	i := index - 1
	if s.state[side][i] != stateUndoArmed {
		return ErrNothingToUndo
	}
	*s.position(side, i) = s.travel[side][i].Start
	s.state[side][i] = stateRedoArmed
	s.notify(side, index)
	return nil
}

// Redo restores the point to where its undone move had put it. Valid only
// immediately after an undo.
func (s *ControlPointSet) Redo(side Side, index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	i := index - 1
	if s.state[side][i] != stateRedoArmed {
		return ErrNothingToRedo
	}
	*s.position(side, i) = s.travel[side][i].End
	s.state[side][i] = stateUndoArmed
	s.notify(side, index)
	return nil
}

// CanUndo reports whether Undo would succeed for the point. Presentation
// layers read this to enable/disable their undo affordance; they never own
// the state.
func (s *ControlPointSet) CanUndo(side Side, index int) bool {
	if checkIndex(index) != nil {
		return false
	}
	return s.state[side][index-1] == stateUndoArmed
}

// CanRedo reports whether Redo would succeed for the point.
func (s *ControlPointSet) CanRedo(side Side, index int) bool {
	if checkIndex(index) != nil {
		return false
	}
	return s.state[side][index-1] == stateRedoArmed
}

// Travel returns the point's travel record.
func (s *ControlPointSet) Travel(side Side, index int) (TravelRecord, error) {
	if err := checkIndex(index); err != nil {
		return TravelRecord{}, err
	}
	return s.travel[side][index-1], nil
}

// SetAll bulk-overwrites every pair and clears all travel history. Used
// when control points are restored from file: the loaded positions become a
// fresh baseline with no undo available until a new manual move occurs.
func (s *ControlPointSet) SetAll(pairs [4]ControlPointPair) {
	s.pairs = pairs
	s.resetHistory(SideTarget)
	s.resetHistory(SideMoving)
	for i := 1; i <= 4; i++ {
		s.notify(SideTarget, i)
		s.notify(SideMoving, i)
	}
}

// SetSide bulk-overwrites one side's points and clears that side's history,
// leaving the other side untouched. Used when a persistence load proceeds
// for only one of the two images.
func (s *ControlPointSet) SetSide(side Side, points [4]geometry.Point2D) {
	for i := range points {
		*s.position(side, i) = points[i]
	}
	s.resetHistory(side)
	for i := 1; i <= 4; i++ {
		s.notify(side, i)
	}
}

func (s *ControlPointSet) resetHistory(side Side) {
	for i := 0; i < 4; i++ {
		s.travel[side][i] = TravelRecord{}
		s.state[side][i] = stateDefault
	}
}

func (s *ControlPointSet) position(side Side, i int) *geometry.Point2D {
	if side == SideTarget {
		return &s.pairs[i].Target
	}
	return &s.pairs[i].Moving
}

func checkIndex(index int) error {
	if index < 1 || index > 4 {
		return fmt.Errorf("control point index %d out of range 1..4", index)
	}
	return nil
}
