package catalog

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// Chapter is the primary unit of work flowing through the pipeline. Its
// fingerprint is a pure function of (title, source URL); every other field
// is derived or assigned at discovery time.
type Chapter struct {
	Hash      string
	Number    int
	BookHash  string
	Status    Status
	CreatedAt time.Time
	Title     string
	URL       string
	BookName  string

	StaticBasePath string
	CoverImagePath string
	TextPath       string
	SubtitlePath   string
	WAVPath        string
	MP3Path        string
	MP4Path        string
}

// NewChapter builds a chapter in StatusPending with all derived file
// locations computed from the book and title slugs under staticDir.
func NewChapter(bookHash, bookName, title, url string, number int, staticDir string) *Chapter {
	c := &Chapter{
		Hash:           ChapterFingerprint(title, url),
		Number:         number,
		BookHash:       bookHash,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
		Title:          title,
		URL:            url,
		BookName:       bookName,
		StaticBasePath: staticDir,
	}
	c.derivePaths()
	return c
}

func (c *Chapter) derivePaths() {
	bookSlug := Slug(c.BookName)
	name := filepath.Join(bookSlug, Slug(c.Title))
	c.TextPath = filepath.Join(c.StaticBasePath, "txt", name+".txt")
	c.WAVPath = filepath.Join(c.StaticBasePath, "wav", name+".wav")
	c.MP3Path = filepath.Join(c.StaticBasePath, "mp3", name+".mp3")
	c.SubtitlePath = filepath.Join(c.StaticBasePath, "mp3", name+".srt")
	c.MP4Path = filepath.Join(c.StaticBasePath, "mp4", name+".mp4")
	c.CoverImagePath = filepath.Join(c.StaticBasePath, "cover", bookSlug+".jpg")
}

// Kind implements store.Record.
func (c *Chapter) Kind() string { return KindChapter }

// Key implements store.Record.
func (c *Chapter) Key() string { return c.Hash }

// MarshalFields implements store.Record.
func (c *Chapter) MarshalFields() (map[string]string, error) {
	return map[string]string{
		"chapter_hash":            c.Hash,
		"chapter_number":          strconv.Itoa(c.Number),
		"book_hash":               c.BookHash,
		"status":                  string(c.Status),
		"created_at":              c.CreatedAt.Format(time.RFC3339Nano),
		"title":                   c.Title,
		"url":                     c.URL,
		"book_name":               c.BookName,
		"static_base_path":        c.StaticBasePath,
		"cover_image_location":    c.CoverImagePath,
		"text_file_location":      c.TextPath,
		"subtitle_file_location":  c.SubtitlePath,
		"wav_file_location":       c.WAVPath,
		"mp3_file_location":       c.MP3Path,
		"mp4_file_location":       c.MP4Path,
	}, nil
}

// UnmarshalFields implements store.Record.
func (c *Chapter) UnmarshalFields(fields map[string]string) error {
	status, ok := ParseStatus(fields["status"])
	if !ok {
		return fmt.Errorf("chapter %s: unknown status %q", fields["chapter_hash"], fields["status"])
	}
	number, err := strconv.Atoi(fields["chapter_number"])
	if err != nil {
		return fmt.Errorf("chapter %s: parse chapter_number: %w", fields["chapter_hash"], err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return fmt.Errorf("chapter %s: parse created_at: %w", fields["chapter_hash"], err)
	}

	c.Hash = fields["chapter_hash"]
	c.Number = number
	c.BookHash = fields["book_hash"]
	c.Status = status
	c.CreatedAt = createdAt
	c.Title = fields["title"]
	c.URL = fields["url"]
	c.BookName = fields["book_name"]
	c.StaticBasePath = fields["static_base_path"]
	c.CoverImagePath = fields["cover_image_location"]
	c.TextPath = fields["text_file_location"]
	c.SubtitlePath = fields["subtitle_file_location"]
	c.WAVPath = fields["wav_file_location"]
	c.MP3Path = fields["mp3_file_location"]
	c.MP4Path = fields["mp4_file_location"]
	return nil
}
