package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize resamples the buffer to the given dimensions with a Catmull-Rom
// kernel. The channel count is preserved.
func Resize(b *Buffer, width, height int) *Buffer {
	if width == b.Width && height == b.Height {
		return b.Clone()
	}

	src := b.ToImage()
	rect := image.Rect(0, 0, width, height)

	if b.Channels == 1 {
		dst := image.NewGray(rect)
		xdraw.CatmullRom.Scale(dst, rect, src, src.Bounds(), xdraw.Src, nil)
		return grayToBuffer(dst)
	}

	dst := image.NewNRGBA(rect)
	xdraw.CatmullRom.Scale(dst, rect, src, src.Bounds(), xdraw.Src, nil)
	return imageToBuffer(dst, b.Channels)
}
