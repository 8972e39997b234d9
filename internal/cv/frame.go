package cv

import (
	"fmt"
	"image"
	"image/draw"
)

// Frame is one captured RGBA pixel buffer. It is never mutated after
// construction; accessors hand out copies so it can be shared across
// recognition tasks without locking.
type Frame struct {
	width  int
	height int
	pix    []byte // RGBA, stride = 4*width
}

// NewFrame copies img into a new Frame
func NewFrame(img image.Image) (*Frame, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", b.Dx(), b.Dy())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Frame{width: b.Dx(), height: b.Dy(), pix: rgba.Pix}, nil
}

// NewFrameFromRGBA copies a tightly packed RGBA buffer into a new Frame
func NewFrameFromRGBA(width, height int, pix []byte) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d", len(pix), width*height*4)
	}

	buf := make([]byte, len(pix))
	copy(buf, pix)
	return &Frame{width: width, height: height, pix: buf}, nil
}

// Width returns the frame width in pixels
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels
func (f *Frame) Height() int { return f.height }

// Bounds returns the frame rectangle anchored at (0,0)
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// RGBA returns a private copy of the frame as an image
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	copy(img.Pix, f.pix)
	return img
}

// Gray converts the frame to single-channel intensity
func (f *Frame) Gray() *image.Gray {
	gray := image.NewGray(f.Bounds())
	for i, j := 0, 0; i < len(f.pix); i, j = i+4, j+1 {
		r, g, b := uint32(f.pix[i]), uint32(f.pix[i+1]), uint32(f.pix[i+2])
		// ITU-R BT.601 luma, matching OpenCV's RGB2GRAY weights
		gray.Pix[j] = uint8((r*299 + g*587 + b*114 + 500) / 1000)
	}
	return gray
}
