package workflow_test

import (
	"context"
	"testing"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/queue"
	"lorecast/internal/testsupport"
	"lorecast/internal/workflow"
)

func TestRouteChapterWithMetadataGoesToScrape(t *testing.T) {
	st, qc := testsupport.NewStoreAndQueue(t)
	ctx := context.Background()
	if err := qc.EnsureGroups(ctx); err != nil {
		t.Fatalf("EnsureGroups: %v", err)
	}

	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	meta := &catalog.Metadata{BookHash: "bookhash", Album: "My Book", CreatedAt: time.Now()}
	if err := st.Save(ctx, meta); err != nil {
		t.Fatalf("save metadata: %v", err)
	}

	router := workflow.NewRouter(st, qc, time.Minute, nil)
	if err := router.RouteChapter(ctx, chapter); err != nil {
		t.Fatalf("RouteChapter: %v", err)
	}

	delivery, err := qc.Dequeue(ctx, queue.StageScrape, "tester", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue scrape: %v", err)
	}
	if delivery == nil || delivery.Job.Fingerprint != chapter.Hash {
		t.Fatalf("expected scrape job for %s, got %+v", chapter.Hash, delivery)
	}
}

func TestRouteChapterWithoutMetadataGoesToEnrichment(t *testing.T) {
	st, qc := testsupport.NewStoreAndQueue(t)
	ctx := context.Background()
	if err := qc.EnsureGroups(ctx); err != nil {
		t.Fatalf("EnsureGroups: %v", err)
	}

	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, t.TempDir())
	router := workflow.NewRouter(st, qc, time.Minute, nil)
	if err := router.RouteChapter(ctx, chapter); err != nil {
		t.Fatalf("RouteChapter: %v", err)
	}

	delivery, err := qc.Dequeue(ctx, queue.StageEnrichment, "tester", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue enrichment: %v", err)
	}
	if delivery == nil || delivery.Job.Fingerprint != chapter.Hash {
		t.Fatalf("expected enrichment job for %s, got %+v", chapter.Hash, delivery)
	}
}

func TestRouteChapterSecondSiblingTrailsBehindLockHolder(t *testing.T) {
	st, qc := testsupport.NewStoreAndQueue(t)
	ctx := context.Background()
	if err := qc.EnsureGroups(ctx); err != nil {
		t.Fatalf("EnsureGroups: %v", err)
	}

	base := t.TempDir()
	first := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, base)
	second := catalog.NewChapter("bookhash", "My Book", "Chapter Two", "https://example.test/c/2", 2, base)

	router := workflow.NewRouter(st, qc, time.Minute, nil)
	if err := router.RouteChapter(ctx, first); err != nil {
		t.Fatalf("RouteChapter first: %v", err)
	}
	if err := router.RouteChapter(ctx, second); err != nil {
		t.Fatalf("RouteChapter second: %v", err)
	}

	// Only the lock winner is delivered immediately.
	delivery, err := qc.Dequeue(ctx, queue.StageEnrichment, "tester", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if delivery == nil || delivery.Job.Fingerprint != first.Hash {
		t.Fatalf("expected first chapter delivered, got %+v", delivery)
	}
	delivery, err = qc.Dequeue(ctx, queue.StageEnrichment, "tester", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue follower: %v", err)
	}
	if delivery != nil {
		t.Fatalf("follower should be scheduled, not delivered: %+v", delivery)
	}

	// The follower surfaces once its delay elapses.
	if _, err := qc.PromoteDue(ctx, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("PromoteDue: %v", err)
	}
	delivery, err = qc.Dequeue(ctx, queue.StageEnrichment, "tester", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue after promote: %v", err)
	}
	if delivery == nil || delivery.Job.Fingerprint != second.Hash {
		t.Fatalf("expected second chapter after promotion, got %+v", delivery)
	}
}
