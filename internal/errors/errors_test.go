package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := NewCaptureError("window 0x1", errors.New("window minimized"))
	wrapped := fmt.Errorf("start cycle: %w", base)

	if !IsCode(wrapped, ErrorCapture) {
		t.Error("expected wrapped error to carry ErrorCapture")
	}
	if IsCode(wrapped, ErrorStaleResult) {
		t.Error("capture error reported as stale result")
	}
	if IsCode(errors.New("plain"), ErrorCapture) {
		t.Error("plain error reported as pipeline error")
	}
	if !strings.Contains(base.Error(), "window minimized") {
		t.Errorf("cause missing from message: %s", base.Error())
	}
	if !errors.Is(wrapped, base.Cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestAttemptedPaths(t *testing.T) {
	paths := []string{"/app/assets/hshj.png", "/app/hshj.png"}
	err := fmt.Errorf("load template: %w", NewAssetNotFoundError("hshj.png", paths))

	got := Attempted(err)
	if len(got) != 2 || got[0] != paths[0] || got[1] != paths[1] {
		t.Errorf("Attempted() = %v, want %v", got, paths)
	}
	if Attempted(errors.New("other")) != nil {
		t.Error("expected nil paths for a foreign error")
	}
}

func TestToMap(t *testing.T) {
	err := NewEngineInitError("accurate", "chi_sim", errors.New("bad model"))
	m := err.ToMap()

	if m["error_code"] != string(ErrorEngineInit) {
		t.Errorf("error_code = %v", m["error_code"])
	}
	if m["profile"] != "accurate" || m["language"] != "chi_sim" {
		t.Errorf("details not flattened: %v", m)
	}
	if m["cause"] != "bad model" {
		t.Errorf("cause = %v", m["cause"])
	}
}
