package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine wraps a gosseract client configured for automatic page
// segmentation. Tesseract initializes lazily, so a bad language or data
// directory surfaces from the first Text or Fragments call.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine is the production EngineFactory
func NewTesseractEngine(spec EngineSpec) (Engine, error) {
	client := gosseract.NewClient()

	if spec.DataDir != "" {
		if err := client.SetTessdataPrefix(spec.DataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(spec.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language %s: %w", spec.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetVariable("user_defined_dpi", "96"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set dpi: %w", err)
	}

	return &TesseractEngine{client: client}, nil
}

// SetImage encodes the page losslessly and hands it to tesseract
func (e *TesseractEngine) SetImage(img *image.Gray) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	return e.client.SetImageFromBytes(buf.Bytes())
}

func (e *TesseractEngine) Text() (string, error) {
	return e.client.Text()
}

func (e *TesseractEngine) Fragments(unit Unit) ([]Fragment, error) {
	level := gosseract.RIL_WORD
	if unit == UnitSymbol {
		level = gosseract.RIL_SYMBOL
	}

	boxes, err := e.client.GetBoundingBoxes(level)
	if err != nil {
		return nil, err
	}

	fragments := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		fragments = append(fragments, Fragment{
			Unit:       unit,
			Text:       b.Word,
			Confidence: b.Confidence,
			Box:        b.Box,
		})
	}
	return fragments, nil
}

func (e *TesseractEngine) Close() error {
	return e.client.Close()
}
