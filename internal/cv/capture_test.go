//go:build windows
// +build windows

package cv

import (
	"fmt"
	"syscall"
	"testing"
	"unsafe"

	"jordanella.com/hshj-locator/internal/logging"
)

// FindWindowByTitle finds a window handle by its title
func FindWindowByTitle(title string) (uintptr, error) {
	procFindWindow := user32.NewProc("FindWindowW")

	titlePtr, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}

	hwnd, _, _ := procFindWindow.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return 0, fmt.Errorf("window not found: %s", title)
	}

	return hwnd, nil
}

func findTestWindow(t testing.TB) (uintptr, string) {
	for _, title := range []string{"Untitled - Notepad", "Calculator", "MuMuPlayer"} {
		if h, err := FindWindowByTitle(title); err == nil {
			return h, title
		}
	}
	t.Skip("No test window found. Please open one of: Notepad, Calculator, MuMuPlayer")
	return 0, ""
}

// TestWindowCapture captures a real top-level window
func TestWindowCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping window capture test in short mode")
	}

	hwnd, title := findTestWindow(t)
	t.Logf("Found window: %s (hwnd: 0x%x)", title, hwnd)

	capturer := NewDesktopCapturer(logging.Discard())
	frame, err := capturer.Capture(WindowTarget(hwnd, title))
	if err != nil {
		t.Fatalf("Failed to capture window: %v", err)
	}

	if frame.Width() <= 0 || frame.Height() <= 0 {
		t.Fatalf("Invalid dimensions: %dx%d", frame.Width(), frame.Height())
	}

	img := frame.RGBA()
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			t.Fatalf("pixel %d not opaque after BGRX conversion", i/4)
		}
	}
}

func TestWindowCaptureClosedHandle(t *testing.T) {
	capturer := NewDesktopCapturer(logging.Discard())
	// handles are multiples of 2 on Windows; an odd value never names a window
	if _, err := capturer.Capture(WindowTarget(0x7fff_fff1, "")); err == nil {
		t.Fatal("expected capture error for invalid window")
	}
}

// BenchmarkWindowCapture benchmarks window capture performance
func BenchmarkWindowCapture(b *testing.B) {
	hwnd, title := findTestWindow(b)
	capturer := NewDesktopCapturer(logging.Discard())
	target := WindowTarget(hwnd, title)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := capturer.Capture(target); err != nil {
			b.Fatalf("Capture failed: %v", err)
		}
	}
}
