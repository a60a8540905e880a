package register

import (
	"fmt"
	"sync"

	"github.com/olive-groves/butterfly-registrator/internal/raster"
	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

// EventType identifies session events.
type EventType int

const (
	EventTargetLoaded EventType = iota
	EventMovingLoaded
	EventPointChanged
	EventApplied
	EventTargetClosed
	EventMovingClosed
)

// EventListener is called when a session event occurs.
type EventListener func(data interface{})

// Session owns the single-pair registration workflow: the target image, the
// moving image (raw and normalized onto the target canvas), the control
// point set, and the recipe/homography snapshot taken on Apply. All state is
// owned here; presentation layers observe it through events and read
// accessors, never mutate it directly.
type Session struct {
	mu sync.RWMutex

	target     *raster.Buffer
	targetPath string

	moving     *raster.Buffer // raw pixels as decoded
	movingNorm *raster.Buffer // fitted onto the target canvas
	movingPath string

	points *ControlPointSet

	// Snapshot of the last Apply, reused verbatim by batch replay.
	recipe     Recipe
	homography geometry.ProjectiveTransform
	applied    bool

	result *raster.Buffer

	placementOffset float64
	listeners       map[EventType][]EventListener
}

// NewSession creates an empty session with default point placement.
func NewSession() *Session {
	return &Session{
		placementOffset: DefaultPlacementOffset,
		listeners:       make(map[EventType][]EventListener),
	}
}

// SetPlacementOffset overrides the proportional inset used for fresh
// control points. Must be called before images are loaded.
func (s *Session) SetPlacementOffset(offset float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset > 0 && offset < 0.5 {
		s.placementOffset = offset
	}
}

// On registers a listener for an event type.
func (s *Session) On(t EventType, l EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[t] = append(s.listeners[t], l)
}

func (s *Session) notify(t EventType, data interface{}) {
	for _, l := range s.listeners[t] {
		l(data)
	}
}

// LoadTarget decodes the target image file into the session.
func (s *Session) LoadTarget(path string) error {
	buf, err := raster.Decode(path)
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}
	return s.SetTarget(buf, path)
}

// SetTarget installs an already decoded target buffer. Any moving image is
// re-normalized onto the new canvas and the control points are reset.
func (s *Session) SetTarget(buf *raster.Buffer, path string) error {
	s.mu.Lock()
	s.target = buf
	s.targetPath = path
	s.result = nil
	s.applied = false
	if s.moving != nil {
		norm, _, err := Normalize(s.moving, buf.Geometry())
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("normalize moving image: %w", err)
		}
		s.movingNorm = norm
	}
	s.resetPointsLocked()
	s.mu.Unlock()

	s.notify(EventTargetLoaded, path)
	return nil
}

// LoadMoving decodes the moving image file into the session.
func (s *Session) LoadMoving(path string) error {
	buf, err := raster.Decode(path)
	if err != nil {
		return fmt.Errorf("load moving: %w", err)
	}
	return s.SetMoving(buf, path)
}

// SetMoving installs an already decoded moving buffer, normalizing it onto
// the target canvas (the target must be loaded first) and resetting the
// control points.
func (s *Session) SetMoving(buf *raster.Buffer, path string) error {
	s.mu.Lock()
	if s.target == nil {
		s.mu.Unlock()
		return fmt.Errorf("no target image loaded")
	}
	norm, _, err := Normalize(buf, s.target.Geometry())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("normalize moving image: %w", err)
	}
	s.moving = buf
	s.movingNorm = norm
	s.movingPath = path
	s.result = nil
	s.applied = false
	s.resetPointsLocked()
	s.mu.Unlock()

	s.notify(EventMovingLoaded, path)
	return nil
}

// resetPointsLocked recreates the control point set at default placements
// when both images are present, and drops it otherwise.
func (s *Session) resetPointsLocked() {
	if s.target == nil || s.movingNorm == nil {
		s.points = nil
		return
	}
	// Both quads live on the same canvas: the moving image is already
	// letterboxed to the target's dimensions.
	canvas := geometry.Size{
		Width:  float64(s.target.Width),
		Height: float64(s.target.Height),
	}
	s.points = NewControlPointSet(canvas, canvas, s.placementOffset)
	s.points.OnChange(func(c PointChange) {
		s.notify(EventPointChanged, c)
	})
}

// Points returns the live control point set, or nil when either image is
// missing.
func (s *Session) Points() *ControlPointSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points
}

// SetPoints bulk-overwrites control points from a persistence load. Either
// slice may be nil to leave that side untouched (the caller declined the
// filename conflict for it). History is cleared for every side that is set.
func (s *Session) SetPoints(target, moving []geometry.Point2D) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.points == nil {
		return fmt.Errorf("no control points: load both images first")
	}
	if target != nil {
		if len(target) != 4 {
			return fmt.Errorf("expected 4 target points, got %d", len(target))
		}
		s.points.SetSide(SideTarget, [4]geometry.Point2D(target))
	}
	if moving != nil {
		if len(moving) != 4 {
			return fmt.Errorf("expected 4 moving points, got %d", len(moving))
		}
		s.points.SetSide(SideMoving, [4]geometry.Point2D(moving))
	}
	return nil
}

// Apply solves the homography from the current control points and warps the
// normalized moving image onto the target canvas. The recipe and homography
// are snapshotted for batch replay; the warped result is retained until the
// next load or Apply.
func (s *Session) Apply() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil || s.movingNorm == nil || s.points == nil {
		return fmt.Errorf("both target and moving images must be loaded")
	}

	h, err := Solve(s.points.MovingQuad(), s.points.TargetQuad())
	if err != nil {
		return err
	}

	// Recompute the recipe from the raw moving image so the snapshot always
	// matches the pixels that were warped.
	_, recipe, err := Normalize(s.moving, s.target.Geometry())
	if err != nil {
		return err
	}

	result, err := Warp(s.movingNorm, h, recipe.CanvasWidth, recipe.CanvasHeight)
	if err != nil {
		return err
	}

	s.homography = h
	s.recipe = recipe
	s.result = result
	s.applied = true

	s.notify(EventApplied, nil)
	return nil
}

// Result returns the warped buffer from the last Apply, or nil.
func (s *Session) Result() *raster.Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Snapshot returns the recipe and homography captured by the last Apply.
// ok is false if Apply has not succeeded since the images were loaded.
func (s *Session) Snapshot() (Recipe, geometry.ProjectiveTransform, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recipe, s.homography, s.applied
}

// TargetPath returns the path of the loaded target image.
func (s *Session) TargetPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targetPath
}

// MovingPath returns the path of the loaded moving image.
func (s *Session) MovingPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movingPath
}

// MovingGeometry returns the raw (pre-normalization) geometry of the moving
// image, the reference batch images are checked against.
func (s *Session) MovingGeometry() (raster.Geometry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.moving == nil {
		return raster.Geometry{}, false
	}
	return s.moving.Geometry(), true
}

// CloseTarget drops the target image, the control points, and any result.
func (s *Session) CloseTarget() {
	s.mu.Lock()
	s.target = nil
	s.targetPath = ""
	s.result = nil
	s.applied = false
	s.resetPointsLocked()
	s.mu.Unlock()
	s.notify(EventTargetClosed, nil)
}

// CloseMoving drops the moving image, the control points, and any result.
func (s *Session) CloseMoving() {
	s.mu.Lock()
	s.moving = nil
	s.movingNorm = nil
	s.movingPath = ""
	s.result = nil
	s.applied = false
	s.resetPointsLocked()
	s.mu.Unlock()
	s.notify(EventMovingClosed, nil)
}
