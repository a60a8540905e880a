// Package raster provides the interleaved pixel-buffer representation the
// registration engine operates on, plus image file decode/encode.
package raster

import (
	"image"
	"image/color"
)

// Geometry describes the dimensions of a raw pixel buffer.
type Geometry struct {
	Width    int
	Height   int
	Channels int
}

// Aspect returns the width/height aspect ratio.
func (g Geometry) Aspect() float64 {
	return float64(g.Width) / float64(g.Height)
}

// SameDimensions reports whether two geometries have equal width and height.
// Channel count is deliberately not compared: batch replay accepts moving
// images whose channel layout differs from the reference.
func (g Geometry) SameDimensions(other Geometry) bool {
	return g.Width == other.Width && g.Height == other.Height
}

// Buffer is an interleaved row-major pixel buffer with 1 (grayscale),
// 3 (RGB) or 4 (RGBA) channels.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New creates a zero-filled buffer. Zero pixels are transparent when an
// alpha channel is present, black otherwise.
func New(width, height, channels int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Geometry returns the buffer's dimensions.
func (b *Buffer) Geometry() Geometry {
	return Geometry{Width: b.Width, Height: b.Height, Channels: b.Channels}
}

// Offset returns the index of the first channel of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := New(b.Width, b.Height, b.Channels)
	copy(out.Pix, b.Pix)
	return out
}

// FromImage converts a decoded image into a Buffer. Grayscale images keep a
// single channel, fully opaque images three, everything else four.
func FromImage(img image.Image) *Buffer {
	if g, ok := img.(*image.Gray); ok {
		return grayToBuffer(g)
	}
	channels := 4
	if op, ok := img.(interface{ Opaque() bool }); ok && op.Opaque() {
		channels = 3
	}
	return imageToBuffer(img, channels)
}

func grayToBuffer(g *image.Gray) *Buffer {
	bounds := g.Bounds()
	out := New(bounds.Dx(), bounds.Dy(), 1)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Pix[out.Offset(x, y)] = g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
		}
	}
	return out
}

func imageToBuffer(img image.Image, channels int) *Buffer {
	bounds := img.Bounds()
	out := New(bounds.Dx(), bounds.Dy(), channels)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := out.Offset(x, y)
			switch channels {
			case 1:
				c2 := color.GrayModel.Convert(c).(color.Gray)
				out.Pix[i] = c2.Y
			case 3:
				out.Pix[i] = c.R
				out.Pix[i+1] = c.G
				out.Pix[i+2] = c.B
			default:
				out.Pix[i] = c.R
				out.Pix[i+1] = c.G
				out.Pix[i+2] = c.B
				out.Pix[i+3] = c.A
			}
		}
	}
	return out
}

// ToImage converts the buffer back into an image for encoding or display.
func (b *Buffer) ToImage() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Channels {
	case 1:
		img := image.NewGray(rect)
		for y := 0; y < b.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+b.Width], b.Pix[y*b.Width:(y+1)*b.Width])
		}
		return img
	case 3:
		img := image.NewNRGBA(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				i := b.Offset(x, y)
				img.SetNRGBA(x, y, color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xff})
			}
		}
		return img
	default:
		img := image.NewNRGBA(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				i := b.Offset(x, y)
				img.SetNRGBA(x, y, color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]})
			}
		}
		return img
	}
}

// Rotate returns a copy rotated clockwise by 90, 180 or 270 degrees.
// Any other angle returns an unrotated copy.
func (b *Buffer) Rotate(degrees int) *Buffer {
	c := b.Channels
	switch degrees {
	case 90:
		out := New(b.Height, b.Width, c)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				copy(out.Pix[out.Offset(x, y):out.Offset(x, y)+c], b.Pix[b.Offset(y, b.Height-1-x):b.Offset(y, b.Height-1-x)+c])
			}
		}
		return out
	case 180:
		out := New(b.Width, b.Height, c)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				copy(out.Pix[out.Offset(x, y):out.Offset(x, y)+c], b.Pix[b.Offset(b.Width-1-x, b.Height-1-y):b.Offset(b.Width-1-x, b.Height-1-y)+c])
			}
		}
		return out
	case 270:
		out := New(b.Height, b.Width, c)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				copy(out.Pix[out.Offset(x, y):out.Offset(x, y)+c], b.Pix[b.Offset(b.Width-1-y, x):b.Offset(b.Width-1-y, x)+c])
			}
		}
		return out
	default:
		return b.Clone()
	}
}
