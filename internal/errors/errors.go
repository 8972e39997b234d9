package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode classifies recognition pipeline failures
type ErrorCode string

const (
	// Cycle-level errors
	ErrorCapture ErrorCode = "CAPTURE_FAILED"

	// Task-scoped errors (isolated to one slot)
	ErrorAssetNotFound ErrorCode = "ASSET_NOT_FOUND"
	ErrorEngineInit    ErrorCode = "ENGINE_INIT_FAILED"

	// Silently dropped by the coordinator
	ErrorStaleResult ErrorCode = "STALE_RESULT"
)

// PipelineError represents a structured pipeline error
type PipelineError struct {
	Code      ErrorCode
	Message   string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewCaptureError(target string, cause error) *PipelineError {
	return &PipelineError{
		Code:      ErrorCapture,
		Message:   fmt.Sprintf("capture of %s failed", target),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"target": target,
		},
		Cause: cause,
	}
}

func NewAssetNotFoundError(asset string, attempted []string) *PipelineError {
	return &PipelineError{
		Code:      ErrorAssetNotFound,
		Message:   fmt.Sprintf("%s not found (searched: %s)", asset, strings.Join(attempted, ", ")),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"asset":     asset,
			"attempted": attempted,
		},
	}
}

func NewEngineInitError(profileID, language string, cause error) *PipelineError {
	return &PipelineError{
		Code:      ErrorEngineInit,
		Message:   fmt.Sprintf("OCR engine init failed for profile %s (language %s)", profileID, language),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"profile":  profileID,
			"language": language,
		},
		Cause: cause,
	}
}

func NewStaleResultError(taskEpoch, currentEpoch uint64) *PipelineError {
	return &PipelineError{
		Code:      ErrorStaleResult,
		Message:   fmt.Sprintf("result from cycle %d arrived during cycle %d", taskEpoch, currentEpoch),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"task_epoch":    taskEpoch,
			"current_epoch": currentEpoch,
		},
	}
}

// IsCode reports whether err (or anything it wraps) is a PipelineError with code
func IsCode(err error, code ErrorCode) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// Attempted returns the search paths recorded on an AssetNotFound error
func Attempted(err error) []string {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		return nil
	}
	paths, _ := pe.Details["attempted"].([]string)
	return paths
}

// ToMap converts error to a flat map for log context
func (e *PipelineError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
