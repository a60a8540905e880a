package register

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olive-groves/butterfly-registrator/internal/version"
	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

// Control point file layout (pipe-delimited text, one record per line):
//
//	Butterfly Registrator
//	<version>
//	control points
//	<normalization note>
//	target
//	<target filename>
//	moving
//	<moving filename 1>|<moving filename 2>|...
//	x|y|x|y
//	<target_x>|<target_y>|<moving_x>|<moving_y>   (exactly 4 rows)
const (
	producerTag       = "Butterfly Registrator"
	pointsMarker      = "control points"
	targetMarker      = "target"
	movingMarker      = "moving"
	normalizationNote = "Assumes moving image(s) resized and padded to match target image dimensions"
)

// PointsFile is a parsed control point file.
type PointsFile struct {
	Producer     string
	Version      string
	TargetName   string
	MovingNames  []string
	TargetPoints []geometry.Point2D
	MovingPoints []geometry.Point2D
}

// FilenameConflict reports that a filename stored in a control point file
// does not match the image currently loaded on that side.
type FilenameConflict struct {
	Side    Side
	Stored  []string
	Current string
}

// ConflictResolver decides whether to load a side's points anyway when its
// stored filename does not match the current image. Returning false omits
// that side from the load; the other side is unaffected.
type ConflictResolver func(FilenameConflict) bool

// SavePoints writes the control points of the target image and one or more
// moving images to a pipe-delimited file. Coordinates are written at full
// precision, not the 2-decimal precision shown interactively, so a
// follow-up load reproduces them exactly.
func SavePoints(path, targetName string, targetPoints []geometry.Point2D, movingNames []string, movingPoints []geometry.Point2D) error {
	if targetName == "" || len(movingNames) == 0 {
		return fmt.Errorf("save points: missing image filenames")
	}
	if targetPoints == nil || movingPoints == nil {
		return fmt.Errorf("save points: missing point arrays")
	}
	if len(targetPoints) != len(movingPoints) {
		return fmt.Errorf("save points: %d target points vs %d moving points", len(targetPoints), len(movingPoints))
	}
	if len(targetPoints) != 4 {
		return fmt.Errorf("save points: expected 4 point pairs, got %d", len(targetPoints))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save points: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = '|'

	rows := [][]string{
		{producerTag},
		{version.Version},
		{pointsMarker},
		{normalizationNote},
		{targetMarker},
		{targetName},
		{movingMarker},
		movingNames,
		{"x", "y", "x", "y"},
	}
	for i := range targetPoints {
		rows = append(rows, []string{
			formatCoord(targetPoints[i].X),
			formatCoord(targetPoints[i].Y),
			formatCoord(movingPoints[i].X),
			formatCoord(movingPoints[i].Y),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("save points: %w", err)
	}
	return nil
}

// ReadPointsFile parses a control point file without applying any filename
// checks. Returns ErrInvalidFormat when the "target" marker row is missing
// or the coordinate rows are absent or malformed.
func ReadPointsFile(path string) (*PointsFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read points: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = '|'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	marker := -1
	for i, rec := range records {
		if len(rec) == 1 && rec[0] == targetMarker {
			marker = i
			break
		}
	}
	if marker < 0 {
		return nil, fmt.Errorf("%w: no %q marker row", ErrInvalidFormat, targetMarker)
	}
	// marker+1: target filename; marker+3: moving filenames;
	// marker+4: x/y header; marker+5..+8: the four coordinate rows.
	if len(records) < marker+9 {
		return nil, fmt.Errorf("%w: truncated after %q marker", ErrInvalidFormat, targetMarker)
	}

	pf := &PointsFile{
		TargetName:  records[marker+1][0],
		MovingNames: records[marker+3],
	}
	if marker >= 2 {
		pf.Producer = records[0][0]
		pf.Version = records[1][0]
	}

	for _, rec := range records[marker+5 : marker+9] {
		if len(rec) < 4 {
			return nil, fmt.Errorf("%w: coordinate row has %d fields, want 4", ErrInvalidFormat, len(rec))
		}
		vals := make([]float64, 4)
		for j := 0; j < 4; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad coordinate %q", ErrInvalidFormat, rec[j])
			}
			vals[j] = v
		}
		pf.TargetPoints = append(pf.TargetPoints, geometry.Point2D{X: vals[0], Y: vals[1]})
		pf.MovingPoints = append(pf.MovingPoints, geometry.Point2D{X: vals[2], Y: vals[3]})
	}
	return pf, nil
}

// PointsFor applies the filename checks to a parsed file. A side whose
// stored filename matches the current one is always returned; on mismatch
// the resolver decides, and a nil resolver declines. A declined side comes
// back nil.
func (pf *PointsFile) PointsFor(currentTarget, currentMoving string, resolve ConflictResolver) (target, moving []geometry.Point2D) {
	includeTarget := pf.TargetName == currentTarget
	if !includeTarget && resolve != nil {
		includeTarget = resolve(FilenameConflict{
			Side:    SideTarget,
			Stored:  []string{pf.TargetName},
			Current: currentTarget,
		})
	}

	includeMoving := false
	for _, name := range pf.MovingNames {
		if name == currentMoving {
			includeMoving = true
			break
		}
	}
	if !includeMoving && resolve != nil {
		includeMoving = resolve(FilenameConflict{
			Side:    SideMoving,
			Stored:  pf.MovingNames,
			Current: currentMoving,
		})
	}

	if includeTarget {
		target = pf.TargetPoints
	}
	if includeMoving {
		moving = pf.MovingPoints
	}
	return target, moving
}

// LoadPoints reads a control point file and applies the filename checks in
// one step. See ReadPointsFile and PointsFor.
func LoadPoints(path, currentTarget, currentMoving string, resolve ConflictResolver) (target, moving []geometry.Point2D, err error) {
	pf, err := ReadPointsFile(path)
	if err != nil {
		return nil, nil, err
	}
	target, moving = pf.PointsFor(currentTarget, currentMoving, resolve)
	return target, moving, nil
}

// PointsFilename generates the default filename for a control point file:
// "Registration points - <moving> to <target> - <date time>.csv". Batch
// saves substitute "Batch" for the moving name.
func PointsFilename(movingName, targetName string, batch bool, now time.Time) string {
	movingStem := stem(movingName)
	if batch {
		movingStem = "Batch"
	}
	return fmt.Sprintf("Registration points - %s to %s - %s.csv",
		movingStem, stem(targetName), now.Format("2006-01-02 150405"))
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
