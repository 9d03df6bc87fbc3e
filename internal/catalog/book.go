package catalog

import (
	"encoding/json"
	"fmt"
)

// ChapterLink is one entry of a book's scraped chapter list.
type ChapterLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Book is the aggregate parent of chapters. It is created once per injected
// book by discovery and only ever read afterwards.
type Book struct {
	Hash        string
	Title       string
	MetadataURL string
	Chapters    []ChapterLink
}

// NewBook builds a book whose fingerprint is derived from its title.
func NewBook(title, metadataURL string, chapters []ChapterLink) *Book {
	return &Book{
		Hash:        BookFingerprint(title),
		Title:       title,
		MetadataURL: metadataURL,
		Chapters:    chapters,
	}
}

// Kind implements store.Record.
func (b *Book) Kind() string { return KindBook }

// Key implements store.Record.
func (b *Book) Key() string { return b.Hash }

// MarshalFields implements store.Record. The chapter link list is a nested
// structure, so it rides inside the flat record as a JSON field.
func (b *Book) MarshalFields() (map[string]string, error) {
	links, err := json.Marshal(b.Chapters)
	if err != nil {
		return nil, fmt.Errorf("book %s: marshal chapters: %w", b.Hash, err)
	}
	return map[string]string{
		"book_hash":    b.Hash,
		"title":        b.Title,
		"metadata_url": b.MetadataURL,
		"chapters":     string(links),
	}, nil
}

// UnmarshalFields implements store.Record.
func (b *Book) UnmarshalFields(fields map[string]string) error {
	var links []ChapterLink
	if raw := fields["chapters"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &links); err != nil {
			return fmt.Errorf("book %s: unmarshal chapters: %w", fields["book_hash"], err)
		}
	}
	b.Hash = fields["book_hash"]
	b.Title = fields["title"]
	b.MetadataURL = fields["metadata_url"]
	b.Chapters = links
	return nil
}
