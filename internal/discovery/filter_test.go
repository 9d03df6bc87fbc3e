package discovery_test

import (
	"errors"
	"testing"

	"lorecast/internal/catalog"
	"lorecast/internal/discovery"
)

func chapterList() []catalog.ChapterLink {
	return []catalog.ChapterLink{
		{Title: "A", URL: "a"},
		{Title: "B", URL: "b"},
		{Title: "C", URL: "c"},
		{Title: "D", URL: "d"},
	}
}

func TestFilterChaptersInclusiveRange(t *testing.T) {
	ranged, err := discovery.FilterChapters(chapterList(), "b", "c")
	if err != nil {
		t.Fatalf("FilterChapters: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(ranged))
	}
	if ranged[0].Number != 1 || ranged[0].Link.Title != "B" {
		t.Fatalf("unexpected first entry: %+v", ranged[0])
	}
	if ranged[1].Number != 2 || ranged[1].Link.Title != "C" {
		t.Fatalf("unexpected second entry: %+v", ranged[1])
	}
}

func TestFilterChaptersSingleChapterRange(t *testing.T) {
	ranged, err := discovery.FilterChapters(chapterList(), "c", "c")
	if err != nil {
		t.Fatalf("FilterChapters: %v", err)
	}
	if len(ranged) != 1 || ranged[0].Number != 2 {
		t.Fatalf("unexpected range: %+v", ranged)
	}
}

func TestFilterChaptersInvalidRanges(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"end precedes start", "c", "b"},
		{"start absent", "x", "c"},
		{"end absent", "b", "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := discovery.FilterChapters(chapterList(), tc.start, tc.end); !errors.Is(err, discovery.ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}
