package cv

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// NotFoundLocation is reported when no scale could be evaluated
var NotFoundLocation = image.Pt(-1, -1)

// MatchResult contains the best template position across all scales
type MatchResult struct {
	Found     bool
	Location  image.Point // top-left corner in frame coordinates
	Score     float64
	Scale     float64
	Size      image.Point // template size at Scale
	Masked    bool        // alpha mask + TM_CCORR_NORMED instead of TM_CCOEFF_NORMED
	Evaluated int         // number of scales that fit the frame
	Trace     []ScaleScore
}

// ScaleScore is the best position found at one evaluated scale
type ScaleScore struct {
	Scale    float64
	Score    float64
	Location image.Point
}

// NotFoundMatch returns the not-found sentinel with score 0
func NotFoundMatch() MatchResult {
	return MatchResult{Location: NotFoundLocation}
}

// Center returns the middle of the matched area
func (r MatchResult) Center() image.Point {
	return r.Location.Add(r.Size.Div(2))
}

// Summary formats the result for the result label
func (r MatchResult) Summary() string {
	if !r.Found {
		return "模板匹配坐标: 未找到"
	}
	return fmt.Sprintf("模板匹配坐标: (%d,%d) 评分:%.4f", r.Location.X, r.Location.Y, r.Score)
}

// MatchConfig configures multi-scale matching
type MatchConfig struct {
	Scales          []float64 // evaluated largest first regardless of order here
	AlphaThreshold  float32   // alpha > threshold is opaque
	MinTemplateSize int       // scaled templates below this in either dimension are skipped
}

// DefaultScales returns 1.0 down to 0.4 in steps of 0.1
func DefaultScales() []float64 {
	scales := make([]float64, 0, 7)
	for i := 10; i >= 4; i-- {
		scales = append(scales, float64(i)/10)
	}
	return scales
}

// DefaultMatchConfig returns recommended settings
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		Scales:          DefaultScales(),
		AlphaThreshold:  10,
		MinTemplateSize: 2,
	}
}

func (c *MatchConfig) descendingScales() []float64 {
	scales := make([]float64, 0, len(c.Scales))
	for _, s := range c.Scales {
		if s > 0 {
			scales = append(scales, s)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scales)))
	return scales
}

// FindBestMatch runs an exhaustive multi-scale search and keeps the
// globally best (position, scale, score). There is no early exit: the
// on-screen icon size depends on the target window and is not assumed.
func FindBestMatch(frame *Frame, tmpl *TemplateImage, config *MatchConfig) (MatchResult, error) {
	if config == nil {
		config = DefaultMatchConfig()
	}
	best := NotFoundMatch()
	if frame == nil || tmpl == nil {
		return best, fmt.Errorf("frame and template are required")
	}

	frameMat, err := rgbaToBGR(frame.RGBA().Pix, frame.Height(), frame.Width())
	if err != nil {
		return best, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer frameMat.Close()

	tmplMat, err := rgbaToBGR(tmpl.rgbaBytes(), tmpl.Height(), tmpl.Width())
	if err != nil {
		return best, fmt.Errorf("failed to convert template: %w", err)
	}
	defer tmplMat.Close()

	alpha := gocv.NewMat()
	if tmpl.HasAlpha() {
		alpha.Close()
		alpha, err = gocv.NewMatFromBytes(tmpl.Height(), tmpl.Width(), gocv.MatTypeCV8UC1, tmpl.alphaBytes())
		if err != nil {
			return best, fmt.Errorf("failed to build alpha channel: %w", err)
		}
	}
	defer alpha.Close()

	for _, scale := range config.descendingScales() {
		score, loc, size, ok := matchAtScale(frameMat, tmplMat, alpha, scale, config)
		if !ok {
			continue
		}
		best.Evaluated++
		best.Trace = append(best.Trace, ScaleScore{Scale: scale, Score: score, Location: loc})
		if !best.Found || score > best.Score {
			best.Found = true
			best.Location = loc
			best.Score = score
			best.Scale = scale
			best.Size = size
			best.Masked = tmpl.HasAlpha()
		}
	}

	return best, nil
}

// matchAtScale evaluates one scale; ok is false when the scale was skipped
func matchAtScale(frame, tmpl, alpha gocv.Mat, scale float64, config *MatchConfig) (float64, image.Point, image.Point, bool) {
	scaled := resizeArea(tmpl, scale)
	defer scaled.Close()

	cols, rows := scaled.Cols(), scaled.Rows()
	if cols < config.MinTemplateSize || rows < config.MinTemplateSize ||
		cols > frame.Cols() || rows > frame.Rows() {
		return 0, NotFoundLocation, image.Point{}, false
	}

	method := gocv.TmCcoeffNormed
	mask := gocv.NewMat()
	defer mask.Close()

	if !alpha.Empty() {
		scaledAlpha := resizeArea(alpha, scale)
		defer scaledAlpha.Close()
		gocv.Threshold(scaledAlpha, &mask, config.AlphaThreshold, 255, gocv.ThresholdBinary)
		method = gocv.TmCcorrNormed
	}

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(frame, scaled, &result, method, mask)
	if result.Empty() {
		return 0, NotFoundLocation, image.Point{}, false
	}

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	score := float64(maxVal)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, NotFoundLocation, image.Point{}, false
	}

	return score, maxLoc, image.Pt(cols, rows), true
}

// resizeArea returns a new Mat scaled with area interpolation; the caller closes it
func resizeArea(src gocv.Mat, scale float64) gocv.Mat {
	dst := gocv.NewMat()
	if scale == 1 {
		src.CopyTo(&dst)
		return dst
	}
	gocv.Resize(src, &dst, image.Point{}, scale, scale, gocv.InterpolationArea)
	return dst
}

func rgbaToBGR(pix []byte, rows, cols int) (gocv.Mat, error) {
	rgba, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
