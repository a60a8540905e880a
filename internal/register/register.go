// Package register implements four-point image registration: letterbox
// normalization of a moving image onto a target canvas, solving and applying
// the projective transform between two point quads, per-point undo/redo
// bookkeeping, batch replay over additional files, and control-point file
// persistence.
package register

import "errors"

var (
	// ErrDegenerateConfiguration is returned when the four control point
	// pairs cannot determine a projective transform (coincident points or
	// three collinear points on either side).
	ErrDegenerateConfiguration = errors.New("degenerate control point configuration")

	// ErrDimensionMismatch is returned when a batch image's raw dimensions
	// differ from the moving image the control points were placed on.
	ErrDimensionMismatch = errors.New("image dimensions do not match the reference moving image")

	// ErrInvalidFormat is returned when a control point file lacks the
	// expected structure.
	ErrInvalidFormat = errors.New("invalid control point file")

	// ErrNothingToUndo is returned by Undo when the point has no recorded
	// move, or its last move was already undone.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when the point's last move was
	// not undone.
	ErrNothingToRedo = errors.New("nothing to redo")
)
