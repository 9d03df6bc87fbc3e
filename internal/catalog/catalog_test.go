package catalog_test

import (
	"path/filepath"
	"strings"
	"testing"

	"lorecast/internal/catalog"
)

func TestChapterFingerprintIsDeterministic(t *testing.T) {
	a := catalog.ChapterFingerprint("Chapter One", "https://example.test/c/1")
	b := catalog.ChapterFingerprint("Chapter One", "https://example.test/c/1")
	if a != b {
		t.Fatalf("same inputs produced different fingerprints: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if c := catalog.ChapterFingerprint("Chapter Two", "https://example.test/c/1"); c == a {
		t.Fatal("different titles produced the same fingerprint")
	}
	if c := catalog.ChapterFingerprint("Chapter One", "https://example.test/c/2"); c == a {
		t.Fatal("different URLs produced the same fingerprint")
	}
}

func TestBookFingerprintUsesTitleOnly(t *testing.T) {
	a := catalog.BookFingerprint("The Long Walk")
	b := catalog.BookFingerprint("The Long Walk")
	if a != b {
		t.Fatalf("same title produced different fingerprints: %q vs %q", a, b)
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Long Walk", "the_long_walk"},
		{"  Trimmed  Name ", "trimmed__name"},
		{"Café Été", "cafe_ete"},
		{"already_slugged", "already_slugged"},
	}
	for _, tc := range cases {
		if got := catalog.Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewChapterDerivesPaths(t *testing.T) {
	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 3, "/srv/static")

	if chapter.Status != catalog.StatusPending {
		t.Fatalf("new chapter status = %q, want pending", chapter.Status)
	}
	if chapter.Number != 3 {
		t.Fatalf("chapter number = %d, want 3", chapter.Number)
	}
	wantTxt := filepath.Join("/srv/static", "txt", "my_book", "chapter_one.txt")
	if chapter.TextPath != wantTxt {
		t.Fatalf("text path = %q, want %q", chapter.TextPath, wantTxt)
	}
	if !strings.HasSuffix(chapter.WAVPath, filepath.Join("wav", "my_book", "chapter_one.wav")) {
		t.Fatalf("unexpected wav path: %q", chapter.WAVPath)
	}
	if !strings.HasSuffix(chapter.SubtitlePath, filepath.Join("mp3", "my_book", "chapter_one.srt")) {
		t.Fatalf("unexpected subtitle path: %q", chapter.SubtitlePath)
	}
	if !strings.HasSuffix(chapter.CoverImagePath, filepath.Join("cover", "my_book.jpg")) {
		t.Fatalf("unexpected cover path: %q", chapter.CoverImagePath)
	}
}

func TestChapterFieldsRoundTrip(t *testing.T) {
	chapter := catalog.NewChapter("bookhash", "My Book", "Chapter One", "https://example.test/c/1", 1, "/srv/static")
	chapter.Status = catalog.StatusProcessing

	fields, err := chapter.MarshalFields()
	if err != nil {
		t.Fatalf("MarshalFields: %v", err)
	}
	var decoded catalog.Chapter
	if err := decoded.UnmarshalFields(fields); err != nil {
		t.Fatalf("UnmarshalFields: %v", err)
	}
	if decoded.Hash != chapter.Hash || decoded.Status != catalog.StatusProcessing || decoded.TextPath != chapter.TextPath {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, chapter)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := catalog.ParseStatus(" Completed "); !ok || status != catalog.StatusCompleted {
		t.Fatalf("ParseStatus(Completed) = %q, %v", status, ok)
	}
	if _, ok := catalog.ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
	if !catalog.StatusFailed.IsTerminal() || catalog.StatusProcessing.IsTerminal() {
		t.Fatal("terminal classification wrong")
	}
}
