package register

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

var (
	testTargetPoints = []geometry.Point2D{
		{X: 270.123456789, Y: 270}, {X: 630, Y: 270.5},
		{X: 270, Y: 630}, {X: 630.000001, Y: 630},
	}
	testMovingPoints = []geometry.Point2D{
		{X: 300, Y: 280}, {X: 600, Y: 275},
		{X: 305, Y: 610}, {X: 598.25, Y: 612},
	}
)

func TestSaveAndReadPointsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	err := SavePoints(path, "specimen.tiff", testTargetPoints,
		[]string{"wing.png", "wing2.png"}, testMovingPoints)
	require.NoError(t, err)

	pf, err := ReadPointsFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Butterfly Registrator", pf.Producer)
	assert.Equal(t, "specimen.tiff", pf.TargetName)
	assert.Equal(t, []string{"wing.png", "wing2.png"}, pf.MovingNames)

	// Full precision survives the file, not the 2-decimal display precision.
	assert.Equal(t, testTargetPoints, pf.TargetPoints)
	assert.Equal(t, testMovingPoints, pf.MovingPoints)
}

func TestSavePointsUsesPipeDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, SavePoints(path, "a.png", testTargetPoints,
		[]string{"b.png"}, testMovingPoints))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(contents)

	assert.Contains(t, text, "x|y|x|y")
	assert.Contains(t, text, "270.123456789|270|300|280")
}

func TestSavePointsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")

	err := SavePoints(path, "", testTargetPoints, []string{"b.png"}, testMovingPoints)
	assert.Error(t, err)

	err = SavePoints(path, "a.png", testTargetPoints[:3], []string{"b.png"}, testMovingPoints[:3])
	assert.Error(t, err)

	err = SavePoints(path, "a.png", testTargetPoints, []string{"b.png"}, testMovingPoints[:3])
	assert.Error(t, err)
}

func TestReadPointsFileMissingMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("just|some|fields\nno marker here\n"), 0o644))

	_, err := ReadPointsFile(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestReadPointsFileTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.csv")
	lines := []string{
		"Butterfly Registrator", "1.0", "control points", "note",
		"target", "a.png", "moving", "b.png", "x|y|x|y",
		"1|2|3|4", "5|6|7|8",
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	_, err := ReadPointsFile(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestReadPointsFileBadCoordinate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badcoord.csv")
	lines := []string{
		"Butterfly Registrator", "1.0", "control points", "note",
		"target", "a.png", "moving", "b.png", "x|y|x|y",
		"1|2|3|4", "5|6|7|8", "9|ten|11|12", "13|14|15|16",
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	_, err := ReadPointsFile(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPointsForMatchingFilenames(t *testing.T) {
	pf := savedPointsFile(t)

	target, moving := pf.PointsFor("specimen.tiff", "wing.png", nil)
	assert.Equal(t, testTargetPoints, target)
	assert.Equal(t, testMovingPoints, moving)
}

func TestPointsForMismatchedSideIsOmitted(t *testing.T) {
	pf := savedPointsFile(t)

	// Nil resolver declines every mismatch; only the matching side loads.
	target, moving := pf.PointsFor("other.tiff", "wing.png", nil)
	assert.Nil(t, target)
	assert.Equal(t, testMovingPoints, moving)

	target, moving = pf.PointsFor("specimen.tiff", "other.png", nil)
	assert.Equal(t, testTargetPoints, target)
	assert.Nil(t, moving)
}

func TestPointsForResolverDecidesPerSide(t *testing.T) {
	pf := savedPointsFile(t)

	var conflicts []FilenameConflict
	target, moving := pf.PointsFor("other.tiff", "also-other.png",
		func(c FilenameConflict) bool {
			conflicts = append(conflicts, c)
			return c.Side == SideTarget
		})

	require.Len(t, conflicts, 2)
	assert.Equal(t, SideTarget, conflicts[0].Side)
	assert.Equal(t, []string{"specimen.tiff"}, conflicts[0].Stored)
	assert.Equal(t, "other.tiff", conflicts[0].Current)
	assert.Equal(t, SideMoving, conflicts[1].Side)

	assert.Equal(t, testTargetPoints, target)
	assert.Nil(t, moving)
}

func TestPointsFilename(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)

	name := PointsFilename("wing.png", "specimen.tiff", false, now)
	assert.Equal(t, "Registration points - wing to specimen - 2026-08-29 143005.csv", name)

	name = PointsFilename("wing.png", "specimen.tiff", true, now)
	assert.Equal(t, "Registration points - Batch to specimen - 2026-08-29 143005.csv", name)
}

func savedPointsFile(t *testing.T) *PointsFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, SavePoints(path, "specimen.tiff", testTargetPoints,
		[]string{"wing.png"}, testMovingPoints))
	pf, err := ReadPointsFile(path)
	require.NoError(t, err)
	return pf
}
