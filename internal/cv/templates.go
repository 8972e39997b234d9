package cv

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// TemplateImage is the reference icon searched for in a Frame
type TemplateImage struct {
	Name     string
	img      *image.NRGBA
	hasAlpha bool
}

// NewTemplateImage wraps a decoded image. An alpha channel is used as a
// match mask only when the image actually has non-opaque pixels.
func NewTemplateImage(name string, img image.Image) (*TemplateImage, error) {
	if img == nil {
		return nil, fmt.Errorf("template %s: nil image", name)
	}
	nrgba := imaging.Clone(img)
	if nrgba.Bounds().Dx() == 0 || nrgba.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("template %s: empty image", name)
	}
	return &TemplateImage{
		Name:     name,
		img:      nrgba,
		hasAlpha: !nrgba.Opaque(),
	}, nil
}

// WithoutAlpha returns a copy that ignores the alpha channel
func (t *TemplateImage) WithoutAlpha() *TemplateImage {
	return &TemplateImage{Name: t.Name, img: t.img, hasAlpha: false}
}

// Width returns the template width in pixels
func (t *TemplateImage) Width() int { return t.img.Bounds().Dx() }

// Height returns the template height in pixels
func (t *TemplateImage) Height() int { return t.img.Bounds().Dy() }

// HasAlpha reports whether matching will use an alpha-derived mask
func (t *TemplateImage) HasAlpha() bool { return t.hasAlpha }

// rgbaBytes returns the tightly packed straight-alpha RGBA bytes
func (t *TemplateImage) rgbaBytes() []byte {
	return t.img.Pix
}

// alphaBytes returns the alpha channel as a tightly packed single-channel buffer
func (t *TemplateImage) alphaBytes() []byte {
	out := make([]byte, t.Width()*t.Height())
	for i := range out {
		out[i] = t.img.Pix[i*4+3]
	}
	return out
}
