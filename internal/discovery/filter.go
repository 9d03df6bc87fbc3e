package discovery

import (
	"errors"

	"lorecast/internal/catalog"
)

// ErrInvalidRange is returned when the start or end marker URL is absent
// from the chapter list, or the end marker precedes the start marker.
var ErrInvalidRange = errors.New("invalid chapter range")

// RangedChapter pairs a chapter link with its position in the book's full
// chapter list. The position becomes the chapter's track number.
type RangedChapter struct {
	Number int
	Link   catalog.ChapterLink
}

// FilterChapters slices the inclusive [startURL, endURL] range out of a
// book's chapter list, matching markers by URL equality.
func FilterChapters(chapters []catalog.ChapterLink, startURL, endURL string) ([]RangedChapter, error) {
	start, ok := findChapterIndex(chapters, startURL)
	if !ok {
		return nil, ErrInvalidRange
	}
	end, ok := findChapterIndex(chapters, endURL)
	if !ok || end < start {
		return nil, ErrInvalidRange
	}

	ranged := make([]RangedChapter, 0, end-start+1)
	for i := start; i <= end; i++ {
		ranged = append(ranged, RangedChapter{Number: i, Link: chapters[i]})
	}
	return ranged, nil
}

func findChapterIndex(chapters []catalog.ChapterLink, url string) (int, bool) {
	for i, chapter := range chapters {
		if chapter.URL == url {
			return i, true
		}
	}
	return 0, false
}
