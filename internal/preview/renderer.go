package preview

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"jordanella.com/hshj-locator/internal/cv"
)

// DefaultMaxEdge bounds the long edge of a rendered preview
const DefaultMaxEdge = 960

// Renderer overlays recognition results on a captured frame
type Renderer struct {
	MaxEdge int

	PointColor    color.NRGBA // template match marker
	FastColor     color.NRGBA // fast OCR box
	AccurateColor color.NRGBA // accurate OCR box

	Radius int
	Stroke int
}

// NewRenderer creates a renderer with the default palette
func NewRenderer(maxEdge int) *Renderer {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	return &Renderer{
		MaxEdge:       maxEdge,
		PointColor:    color.NRGBA{R: 255, G: 0, B: 0, A: 255},
		FastColor:     color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		AccurateColor: color.NRGBA{R: 0, G: 170, B: 255, A: 255},
		Radius:        12,
		Stroke:        3,
	}
}

// Render draws the optional overlays and returns a bounded preview.
// The result is never nil; a nil frame yields a 1x1 placeholder.
func (r *Renderer) Render(frame *cv.Frame, point *image.Point, fast, accurate *image.Rectangle) *image.NRGBA {
	if frame == nil {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}

	canvas := imaging.Clone(frame.RGBA())

	if fast != nil {
		drawRect(canvas, *fast, r.FastColor, r.Stroke)
	}
	if accurate != nil {
		drawRect(canvas, *accurate, r.AccurateColor, r.Stroke)
	}
	if point != nil {
		drawCircle(canvas, *point, r.Radius, r.Stroke, r.PointColor)
	}

	return r.bound(canvas)
}

// bound downsamples so the long edge is at most MaxEdge
func (r *Renderer) bound(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if r.MaxEdge <= 0 || (w <= r.MaxEdge && h <= r.MaxEdge) {
		return img
	}
	if w >= h {
		return imaging.Resize(img, r.MaxEdge, 0, imaging.Box)
	}
	return imaging.Resize(img, 0, r.MaxEdge, imaging.Box)
}

func drawRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA, stroke int) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, rect.Min.Y+s, rect.Min.X, rect.Max.X-1, c)
		drawHLine(img, rect.Max.Y-1-s, rect.Min.X, rect.Max.X-1, c)
		drawVLine(img, rect.Min.X+s, rect.Min.Y, rect.Max.Y-1, c)
		drawVLine(img, rect.Max.X-1-s, rect.Min.Y, rect.Max.Y-1, c)
	}
}

// drawCircle paints an annulus of the given stroke around center
func drawCircle(img *image.NRGBA, center image.Point, radius, stroke int, c color.NRGBA) {
	outer := radius * radius
	inner := (radius - stroke) * (radius - stroke)
	if radius-stroke <= 0 {
		inner = -1
	}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d := dx*dx + dy*dy
			if d <= outer && d > inner {
				setPixel(img, center.X+dx, center.Y+dy, c)
			}
		}
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		setPixel(img, x, y, c)
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x, y, c)
	}
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return
	}
	i := img.PixOffset(x, y)
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}
