package scraper

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

const listingPage = `
<html><body>
<div class="desc"><h3 class="title">The Long Walk</h3></div>
<ul class="list-chapter">
  <li><a href="https://example.test/c/1" title="Chapter 1">Chapter 1</a></li>
  <li><a href="https://example.test/c/2" title="Chapter 2">Chapter 2</a></li>
  <li><a title="no href">broken</a></li>
</ul>
</body></html>`

func TestParseBookListing(t *testing.T) {
	listing, err := parseBookListing([]byte(listingPage))
	if err != nil {
		t.Fatalf("parseBookListing: %v", err)
	}
	if listing.Title != "The Long Walk" {
		t.Fatalf("title = %q", listing.Title)
	}
	if len(listing.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2 (entries without href are skipped)", len(listing.Chapters))
	}
	if listing.Chapters[1].URL != "https://example.test/c/2" || listing.Chapters[1].Title != "Chapter 2" {
		t.Fatalf("unexpected chapter link: %+v", listing.Chapters[1])
	}
}

func TestParseBookListingEmptyIsNoResult(t *testing.T) {
	if _, err := parseBookListing([]byte("<html><body></body></html>")); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestParseChapterContent(t *testing.T) {
	page := `<html><body>
<a class="chr-title">Chapter 1: The Start</a>
<div id="chr-content"><p>First paragraph.</p><p>Second paragraph.</p></div>
</body></html>`

	content, err := parseChapterContent([]byte(page))
	if err != nil {
		t.Fatalf("parseChapterContent: %v", err)
	}
	if content.Title != "Chapter 1: The Start" {
		t.Fatalf("title = %q", content.Title)
	}
	if content.Content == "" {
		t.Fatal("content empty")
	}
}

func TestParseChapterContentMissingBodyIsNoResult(t *testing.T) {
	page := `<html><body><a class="chr-title">Chapter 1</a></body></html>`
	if _, err := parseChapterContent([]byte(page)); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestParseBookMetadata(t *testing.T) {
	page := `<html><body>
<h1 class="Text__title1">The Long Walk</h1>
<a class="ContributorLink">Jane Writer</a>
<img class="ResponsiveImage" src="https://example.test/cover.jpg"/>
<div class="BookPageMetadataSection__description">A walk that never ends.</div>
<div class="BookPageMetadataSection__genres"><a>Fantasy</a><a>Adventure</a></div>
</body></html>`

	meta, err := parseBookMetadata([]byte(page))
	if err != nil {
		t.Fatalf("parseBookMetadata: %v", err)
	}
	if meta.Title != "The Long Walk" || meta.Artist != "Jane Writer" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.ImageURL != "https://example.test/cover.jpg" {
		t.Fatalf("image = %q", meta.ImageURL)
	}
	if meta.Genre != "Fantasy;Adventure" {
		t.Fatalf("genre = %q", meta.Genre)
	}
	if meta.ReleasedYear != strconv.Itoa(time.Now().Year()) {
		t.Fatalf("released year = %q", meta.ReleasedYear)
	}
}

func TestParseBookMetadataMissingArtistFallsBack(t *testing.T) {
	page := `<html><body><h1 class="Text__title1">Untitled</h1></body></html>`
	meta, err := parseBookMetadata([]byte(page))
	if err != nil {
		t.Fatalf("parseBookMetadata: %v", err)
	}
	if meta.Artist != "Unknown Artist" {
		t.Fatalf("artist fallback = %q", meta.Artist)
	}
}

func TestParseBookMetadataEmptyIsNoResult(t *testing.T) {
	if _, err := parseBookMetadata([]byte("<html><body></body></html>")); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}
