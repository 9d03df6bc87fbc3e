package scrape_test

import (
	"context"
	"os"
	"testing"

	"lorecast/internal/catalog"
	"lorecast/internal/queue"
	"lorecast/internal/scrape"
	"lorecast/internal/services"
	"lorecast/internal/services/scraper"
	"lorecast/internal/store"
	"lorecast/internal/testsupport"
)

type fakeScraper struct {
	content *catalog.ChapterContent
	err     error
}

func (f *fakeScraper) BookChapters(ctx context.Context, url string) (*scraper.BookListing, error) {
	return nil, scraper.ErrNoResult
}

func (f *fakeScraper) ChapterContent(ctx context.Context, url string) (*catalog.ChapterContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

func (f *fakeScraper) BookMetadata(ctx context.Context, url string) (*catalog.Metadata, error) {
	return nil, scraper.ErrNoResult
}

func TestHandlePersistsContentAndAdvances(t *testing.T) {
	st := testsupport.NewStore(t)
	ctx := context.Background()

	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	if err := st.Save(ctx, chapter); err != nil {
		t.Fatalf("save chapter: %v", err)
	}

	handler := scrape.NewHandler(st, &fakeScraper{
		content: &catalog.ChapterContent{Title: "Chapter One", Content: "Some chapter text."},
	})

	result, err := handler.Handle(ctx, queue.NewChapterJob(queue.StageScrape, chapter.Hash))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Next != queue.StageSynthesis {
		t.Fatalf("next stage = %q, want synthesis", result.Next)
	}

	loaded, err := store.Get[catalog.Chapter](ctx, st, chapter.Hash)
	if err != nil {
		t.Fatalf("reload chapter: %v", err)
	}
	if loaded.Status != catalog.StatusProcessing {
		t.Fatalf("status = %q, want processing", loaded.Status)
	}

	content, err := store.Get[catalog.ChapterContent](ctx, st, chapter.Hash)
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	if content.Content != "Some chapter text." {
		t.Fatalf("unexpected content: %q", content.Content)
	}

	raw, err := os.ReadFile(chapter.TextPath)
	if err != nil {
		t.Fatalf("read text file: %v", err)
	}
	if string(raw) != "Some chapter text." {
		t.Fatalf("text file holds %q", raw)
	}
}

func TestHandleEmptyContentIsRetryable(t *testing.T) {
	st := testsupport.NewStore(t)
	ctx := context.Background()

	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	if err := st.Save(ctx, chapter); err != nil {
		t.Fatalf("save chapter: %v", err)
	}

	handler := scrape.NewHandler(st, &fakeScraper{
		content: &catalog.ChapterContent{Title: "Chapter One", Content: "   "},
	})

	_, err := handler.Handle(ctx, queue.NewChapterJob(queue.StageScrape, chapter.Hash))
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	if services.IsFatal(err) {
		t.Fatalf("empty scrape should be retryable, got %v", err)
	}
}

func TestHandleMissingChapterIsFatal(t *testing.T) {
	st := testsupport.NewStore(t)
	handler := scrape.NewHandler(st, &fakeScraper{})

	_, err := handler.Handle(context.Background(), queue.NewChapterJob(queue.StageScrape, "missing"))
	if err == nil || !services.IsFatal(err) {
		t.Fatalf("missing chapter should be fatal, got %v", err)
	}
}
