package raster

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// exifRotationAngle returns the clockwise rotation (degrees) needed to show
// the file upright, per its EXIF orientation tag. Returns 0 when the tag is
// absent, unreadable, or one of the mirrored orientations this tool does
// not handle.
func exifRotationAngle(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	meta, err := exif.Decode(file)
	if err != nil {
		return 0
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 0
	}

	switch orientation {
	case 3:
		return 180
	case 6:
		return 90
	case 8:
		return 270
	default:
		return 0
	}
}
