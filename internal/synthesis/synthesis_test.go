package synthesis_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/store"
	"lorecast/internal/synthesis"
	"lorecast/internal/testsupport"
)

type fakeTTS struct {
	err      error
	lastText string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	f.lastText = text
	return os.WriteFile(outputPath, []byte("RIFF"), 0o644)
}

func seed(t *testing.T, st *store.Client) *catalog.Chapter {
	t.Helper()
	ctx := context.Background()
	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	if err := st.Save(ctx, chapter); err != nil {
		t.Fatalf("save chapter: %v", err)
	}
	content := &catalog.ChapterContent{ChapterHash: chapter.Hash, Title: chapter.Title, Content: "Narrate me."}
	if err := st.Save(ctx, content); err != nil {
		t.Fatalf("save content: %v", err)
	}
	return chapter
}

func TestHandleSynthesizesToWavPath(t *testing.T) {
	st := testsupport.NewStore(t)
	chapter := seed(t, st)
	speech := &fakeTTS{}
	handler := synthesis.NewHandler(st, speech, time.Minute)

	result, err := handler.Handle(context.Background(), queue.NewChapterJob(queue.StageSynthesis, chapter.Hash))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Next != queue.StageMux {
		t.Fatalf("next stage = %q, want mux", result.Next)
	}
	if speech.lastText != "Narrate me." {
		t.Fatalf("synthesized text = %q", speech.lastText)
	}
	if _, err := os.Stat(chapter.WAVPath); err != nil {
		t.Fatalf("wav file not written: %v", err)
	}
}

func TestHandleSynthesizerFailureIsRetryable(t *testing.T) {
	st := testsupport.NewStore(t)
	chapter := seed(t, st)
	handler := synthesis.NewHandler(st, &fakeTTS{err: errors.New("model not loaded")}, time.Minute)

	_, err := handler.Handle(context.Background(), queue.NewChapterJob(queue.StageSynthesis, chapter.Hash))
	if err == nil {
		t.Fatal("expected synthesizer error")
	}
	if services.IsFatal(err) {
		t.Fatalf("synthesizer failure should be retryable, got %v", err)
	}
}

func TestHandleMissingContentIsRetryable(t *testing.T) {
	st := testsupport.NewStore(t)
	ctx := context.Background()
	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	if err := st.Save(ctx, chapter); err != nil {
		t.Fatalf("save chapter: %v", err)
	}
	handler := synthesis.NewHandler(st, &fakeTTS{}, time.Minute)

	_, err := handler.Handle(ctx, queue.NewChapterJob(queue.StageSynthesis, chapter.Hash))
	if err == nil {
		t.Fatal("expected error for missing content")
	}
	if services.IsFatal(err) {
		t.Fatalf("missing content should be retryable under redelivery, got %v", err)
	}
}
