//go:build !windows
// +build !windows

package picker

import (
	"context"
	"fmt"

	"github.com/kbinani/screenshot"

	"jordanella.com/hshj-locator/internal/cv"
)

// pick selects the configured display; there is no window hook here
func (s *Session) pick(ctx context.Context) (cv.Target, error) {
	if err := ctx.Err(); err != nil {
		return cv.Target{}, err
	}
	if s.opts.Display < 0 {
		return cv.Target{}, fmt.Errorf("invalid display index %d", s.opts.Display)
	}
	n := screenshot.NumActiveDisplays()
	if s.opts.Display >= n {
		return cv.Target{}, fmt.Errorf("display %d not available (%d active)", s.opts.Display, n)
	}
	s.logger.Infof("Window picking unavailable, using display %d", s.opts.Display)
	return cv.DisplayTarget(s.opts.Display), nil
}
