package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a referenced entity that is absent from the store.
	// The owning unit of work is dropped rather than retried.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input the pipeline cannot act on, such as a
	// discovery range whose markers are missing or inverted.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks broken runtime configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks a collaborator (scraper, tts, ffmpeg, rsync)
	// that returned no result or a non-zero exit.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks a collaborator that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks any other failure worth retrying.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later retry classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether a stage error should drop the unit of work
// instead of scheduling a retry.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration)
}

// IsRetryable reports whether a stage error is worth redelivering.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return !IsFatal(err)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
