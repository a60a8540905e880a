package register

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olive-groves/butterfly-registrator/internal/raster"
	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

// RegisteredSuffix is the default token inserted before the extension of a
// batch output filename, followed by the target's base name.
const RegisteredSuffix = "_registered_to_"

// BatchOptions tune a batch replay. The zero value gives defaults: outputs
// written with raster.Encode at JPEG quality 100, the standard suffix, no
// overwriting, no progress reporting.
type BatchOptions struct {
	// Quality is the JPEG quality for outputs (1-100). Defaults to 100.
	Quality int

	// Suffix is the name token inserted before the extension. Defaults to
	// RegisteredSuffix.
	Suffix string

	// Overwrite allows replacing destination files that already exist.
	// When false, an existing destination is recorded as a failure.
	Overwrite bool

	// Progress, when set, is called after each file with the number of
	// files processed so far and the total.
	Progress func(processed, total int)

	// Load and Save override file I/O; defaults use the raster package.
	Load func(path string) (*raster.Buffer, error)
	Save func(path string, buf *raster.Buffer, quality int) error
}

// BatchError records a file that failed for a reason other than a
// dimension mismatch.
type BatchError struct {
	Path string
	Err  error
}

// BatchReport aggregates the outcome of a replay. One file's failure never
// aborts the remaining files.
type BatchReport struct {
	Succeeded  []string     // source paths registered and written
	Outputs    []string     // destination paths, parallel to Succeeded
	Mismatched []string     // source paths whose raw dimensions differ from the reference
	Failed     []BatchError // decode, warp, or write failures
}

// Total returns the number of files the report covers.
func (r BatchReport) Total() int {
	return len(r.Succeeded) + len(r.Mismatched) + len(r.Failed)
}

// Replay registers each file with an already-established recipe and
// homography, writing outputs into destDir. Files whose raw dimensions
// differ from refGeom are skipped and recorded; the recipe's resize and
// padding are reused verbatim, never recomputed per file, so every output
// is pixel-geometry-consistent with the original single-pair result.
//
// recipe and homography are read-only inputs, captured by value. The
// context is checked between files; cancellation returns the partial
// report along with the context's error.
func Replay(ctx context.Context, recipe Recipe, homography geometry.ProjectiveTransform, refGeom raster.Geometry, files []string, destDir, targetPath string, opts BatchOptions) (BatchReport, error) {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 100
	}
	if opts.Suffix == "" {
		opts.Suffix = RegisteredSuffix
	}
	if opts.Load == nil {
		opts.Load = raster.Decode
	}
	if opts.Save == nil {
		opts.Save = raster.Encode
	}

	var report BatchReport
	total := len(files)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		dest := filepath.Join(destDir, RegisteredName(path, targetPath, opts.Suffix))
		switch err := replayOne(path, dest, recipe, homography, refGeom, opts, &report); {
		case errors.Is(err, ErrDimensionMismatch):
			report.Mismatched = append(report.Mismatched, path)
		case err != nil:
			report.Failed = append(report.Failed, BatchError{Path: path, Err: err})
		}

		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
	}
	return report, nil
}

func replayOne(path, dest string, recipe Recipe, homography geometry.ProjectiveTransform, refGeom raster.Geometry, opts BatchOptions, report *BatchReport) error {
	if !opts.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("destination exists: %w", os.ErrExist)
		}
	}

	buf, err := opts.Load(path)
	if err != nil {
		return err
	}

	g := buf.Geometry()
	if !g.SameDimensions(refGeom) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch,
			g.Width, g.Height, refGeom.Width, refGeom.Height)
	}

	norm, err := ApplyRecipe(buf, recipe)
	if err != nil {
		return err
	}
	warped, err := Warp(norm, homography, recipe.CanvasWidth, recipe.CanvasHeight)
	if err != nil {
		return err
	}

	if err := opts.Save(dest, warped, opts.Quality); err != nil {
		return err
	}

	report.Succeeded = append(report.Succeeded, path)
	report.Outputs = append(report.Outputs, dest)
	return nil
}

// RegisteredName derives the output filename for a registered image by
// inserting suffix plus the target's base name before the extension, e.g.
// "wing.png" registered to "specimen.tiff" becomes
// "wing_registered_to_specimen.png".
func RegisteredName(movingPath, targetPath, suffix string) string {
	base := filepath.Base(movingPath)
	ext := filepath.Ext(base)
	if suffix == "" {
		suffix = RegisteredSuffix
	}
	return strings.TrimSuffix(base, ext) + suffix + stem(targetPath) + ext
}

// ExistingOutputs returns which of the would-be destination paths already
// exist, so a caller can confirm overwriting before starting the batch.
func ExistingOutputs(files []string, destDir, targetPath, suffix string) []string {
	var existing []string
	for _, path := range files {
		dest := filepath.Join(destDir, RegisteredName(path, targetPath, suffix))
		if _, err := os.Stat(dest); err == nil {
			existing = append(existing, dest)
		}
	}
	return existing
}
