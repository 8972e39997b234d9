//go:build !windows
// +build !windows

package cv

import (
	"fmt"
	"image"
	"runtime"
)

func captureWindow(hwnd uintptr) (*image.RGBA, image.Rectangle, error) {
	return nil, image.Rectangle{}, fmt.Errorf("window capture is not implemented on %s; use a display or region target", runtime.GOOS)
}
