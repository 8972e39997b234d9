//go:build windows
// +build windows

package picker

import (
	"context"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"jordanella.com/hshj-locator/internal/cv"
)

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	kernel32                = syscall.NewLazyDLL("kernel32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procWindowFromPoint     = user32.NewProc("WindowFromPoint")
	procGetAncestor         = user32.NewProc("GetAncestor")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whMouseLL     = 14
	wmQuit        = 0x0012
	wmLButtonDown = 0x0201
	gaRoot        = 2
)

type point struct {
	X, Y int32
}

type msllHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type pickResult struct {
	target cv.Target
	err    error
}

// hookThread runs the hook and its message loop on one locked OS thread
type hookThread struct {
	id     uintptr
	hook   uintptr
	result chan pickResult
}

// pick installs a WH_MOUSE_LL hook and waits for the next left click.
// The click is swallowed and resolved to its top-level window.
func (s *Session) pick(ctx context.Context) (cv.Target, error) {
	ht := &hookThread{result: make(chan pickResult, 1)}
	ready := make(chan error, 1)

	go ht.run(s, ready)
	if err := <-ready; err != nil {
		return cv.Target{}, err
	}
	s.logger.Info("Mouse hook installed, click the target window")

	select {
	case r := <-ht.result:
		return r.target, r.err
	case <-ctx.Done():
		procPostThreadMessageW.Call(ht.id, wmQuit, 0, 0)
		<-ht.result
		return cv.Target{}, ctx.Err()
	}
}

func (ht *hookThread) run(s *Session, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ht.id, _, _ = procGetCurrentThreadId.Call()
	module, _, _ := procGetModuleHandleW.Call(0)

	var picked *pickResult
	callback := syscall.NewCallback(func(nCode int, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 && wParam == wmLButtonDown && picked == nil {
			info := (*msllHookStruct)(unsafe.Pointer(lParam))
			target, err := windowAt(info.Pt)
			picked = &pickResult{target: target, err: err}
			procPostThreadMessageW.Call(ht.id, wmQuit, 0, 0)
			return 1
		}
		ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return ret
	})

	hook, _, callErr := procSetWindowsHookExW.Call(whMouseLL, callback, module, 0)
	if hook == 0 {
		ready <- fmt.Errorf("failed to install mouse hook: %v", callErr)
		return
	}
	ht.hook = hook
	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
	}

	procUnhookWindowsHookEx.Call(ht.hook)
	s.logger.Info("Mouse hook removed")

	if picked == nil {
		picked = &pickResult{err: context.Canceled}
	}
	ht.result <- *picked
}

func windowAt(pt point) (cv.Target, error) {
	// POINT is passed by value packed into one register on 64-bit Windows
	packed := uintptr(uint32(pt.X)) | uintptr(uint32(pt.Y))<<32
	hwnd, _, _ := procWindowFromPoint.Call(packed)
	if hwnd == 0 {
		return cv.Target{}, fmt.Errorf("no window at (%d,%d)", pt.X, pt.Y)
	}
	if root, _, _ := procGetAncestor.Call(hwnd, gaRoot); root != 0 {
		hwnd = root
	}

	title := make([]uint16, 256)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&title[0])), uintptr(len(title)-1))
	return cv.WindowTarget(hwnd, syscall.UTF16ToString(title)), nil
}
