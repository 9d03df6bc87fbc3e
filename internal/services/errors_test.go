package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lorecast/internal/services"
)

func TestWrapCarriesMarkerAndDetail(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "chapter-scrape", "scrape content", "chapter content scrape failed", cause)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("wrapped error lost its marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	msg := err.Error()
	for _, want := range []string{"chapter-scrape", "scrape content", "chapter content scrape failed"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error message missing %q: %s", want, msg)
		}
	}
}

func TestClassification(t *testing.T) {
	fatal := []error{
		services.Wrap(services.ErrNotFound, "s", "op", "gone", nil),
		services.Wrap(services.ErrValidation, "s", "op", "bad input", nil),
		services.Wrap(services.ErrConfiguration, "s", "op", "bad config", nil),
	}
	for _, err := range fatal {
		if !services.IsFatal(err) {
			t.Fatalf("expected fatal: %v", err)
		}
		if services.IsRetryable(err) {
			t.Fatalf("fatal error must not be retryable: %v", err)
		}
	}

	retryable := []error{
		services.Wrap(services.ErrExternalTool, "s", "op", "tool died", nil),
		services.Wrap(services.ErrTimeout, "s", "op", "too slow", nil),
		services.Wrap(services.ErrTransient, "s", "op", "flaky", nil),
		errors.New("unclassified"),
	}
	for _, err := range retryable {
		if services.IsFatal(err) {
			t.Fatalf("expected non-fatal: %v", err)
		}
		if !services.IsRetryable(err) {
			t.Fatalf("expected retryable: %v", err)
		}
	}

	if services.IsRetryable(context.Canceled) {
		t.Fatal("cancellation must not be retried")
	}
}

func TestContextAnnotations(t *testing.T) {
	ctx := services.WithStage(context.Background(), "media-mux")
	ctx = services.WithChapterHash(ctx, "abc123")
	ctx = services.WithRequestID(ctx, "job-1")

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "media-mux" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if hash, ok := services.ChapterHashFromContext(ctx); !ok || hash != "abc123" {
		t.Fatalf("hash = %q, %v", hash, ok)
	}
	if id, ok := services.RequestIDFromContext(ctx); !ok || id != "job-1" {
		t.Fatalf("request id = %q, %v", id, ok)
	}
	if _, ok := services.StageFromContext(context.Background()); ok {
		t.Fatal("empty context must not report a stage")
	}
}
