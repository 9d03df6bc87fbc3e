package muxing_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/muxing"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/ffmpeg"
	"lorecast/internal/store"
	"lorecast/internal/testsupport"
)

type fakeFFmpeg struct {
	duration time.Duration
	requests []ffmpeg.MuxRequest
}

func (f *fakeFFmpeg) Mux(ctx context.Context, req ffmpeg.MuxRequest) error {
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeFFmpeg) AudioDuration(ctx context.Context, path string) (time.Duration, error) {
	return f.duration, nil
}

func seedMuxEntities(t *testing.T, st *store.Client) *catalog.Chapter {
	t.Helper()
	ctx := context.Background()

	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 4, t.TempDir())
	if err := st.Save(ctx, chapter); err != nil {
		t.Fatalf("save chapter: %v", err)
	}
	content := &catalog.ChapterContent{ChapterHash: chapter.Hash, Title: chapter.Title, Content: "One. Two. Three."}
	if err := st.Save(ctx, content); err != nil {
		t.Fatalf("save content: %v", err)
	}
	meta := &catalog.Metadata{
		BookHash:     "bookhash",
		Artist:       "Jane Writer",
		ReleasedYear: "2024",
		CreatedAt:    time.Now(),
	}
	if err := st.Save(ctx, meta); err != nil {
		t.Fatalf("save metadata: %v", err)
	}
	return chapter
}

func TestHandleMuxesBothContainers(t *testing.T) {
	st := testsupport.NewStore(t)
	chapter := seedMuxEntities(t, st)
	media := &fakeFFmpeg{duration: 30 * time.Second}
	handler := muxing.NewHandler(st, media, "320k")

	result, err := handler.Handle(context.Background(), queue.NewChapterJob(queue.StageMux, chapter.Hash))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Next != queue.StageCompletion {
		t.Fatalf("next stage = %q, want completion", result.Next)
	}
	if len(media.requests) != 2 {
		t.Fatalf("ffmpeg ran %d times, want 2", len(media.requests))
	}

	mp4 := media.requests[0]
	if mp4.Format != ffmpeg.FormatMP4 || mp4.OutputPath != chapter.MP4Path {
		t.Fatalf("unexpected first run: %+v", mp4)
	}
	if mp4.SubtitlePath == "" {
		t.Fatal("mp4 run missing subtitle input")
	}

	mp3 := media.requests[1]
	if mp3.Format != ffmpeg.FormatMP3 || mp3.OutputPath != chapter.MP3Path {
		t.Fatalf("unexpected second run: %+v", mp3)
	}
	if mp3.SubtitlePath != "" {
		t.Fatal("mp3 run must not carry subtitles")
	}

	raw, err := os.ReadFile(chapter.SubtitlePath)
	if err != nil {
		t.Fatalf("subtitle file not written: %v", err)
	}
	if !strings.Contains(string(raw), "-->") {
		t.Fatalf("subtitle file not SRT:\n%s", raw)
	}
}

func TestHandleTagDefaults(t *testing.T) {
	st := testsupport.NewStore(t)
	chapter := seedMuxEntities(t, st)
	media := &fakeFFmpeg{duration: 10 * time.Second}
	handler := muxing.NewHandler(st, media, "320k")

	if _, err := handler.Handle(context.Background(), queue.NewChapterJob(queue.StageMux, chapter.Hash)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	tags := media.requests[0].Tags
	expectations := map[string]string{
		"album":        "My Book",
		"artist":       "Jane Writer",
		"album_artist": "empty",
		"genre":        "audiobook",
		"compilation":  "1",
		"title":        "Chapter One",
		"track":        "4",
		"date":         "2024",
	}
	for key, want := range expectations {
		if tags[key] != want {
			t.Fatalf("tag %q = %q, want %q", key, tags[key], want)
		}
	}
}

func TestHandleMissingMetadataIsRetryable(t *testing.T) {
	st := testsupport.NewStore(t)
	ctx := context.Background()

	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	if err := st.Save(ctx, chapter); err != nil {
		t.Fatalf("save chapter: %v", err)
	}
	content := &catalog.ChapterContent{ChapterHash: chapter.Hash, Content: "Text."}
	if err := st.Save(ctx, content); err != nil {
		t.Fatalf("save content: %v", err)
	}

	handler := muxing.NewHandler(st, &fakeFFmpeg{duration: time.Second}, "320k")
	_, err := handler.Handle(ctx, queue.NewChapterJob(queue.StageMux, chapter.Hash))
	if err == nil {
		t.Fatal("expected error for missing metadata")
	}
	if services.IsFatal(err) {
		t.Fatalf("missing metadata should be retryable, got %v", err)
	}
}
