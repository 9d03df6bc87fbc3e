package catalog

import "time"

// Metadata holds the book-level descriptive tags used when tagging produced
// media. At most one record exists per book; its presence is the routing
// signal that lets later chapters skip re-enrichment.
type Metadata struct {
	BookHash     string
	Album        string
	Artist       string
	AlbumArtist  string
	Comment      string
	Composer     string
	Copyright    string
	Genre        string
	Compilation  string
	Title        string
	Track        string
	ReleasedYear string
	ImageURL     string
	Description  string
	CreatedAt    time.Time
}

// Kind implements store.Record.
func (m *Metadata) Kind() string { return KindMetadata }

// Key implements store.Record.
func (m *Metadata) Key() string { return m.BookHash }

// MarshalFields implements store.Record.
func (m *Metadata) MarshalFields() (map[string]string, error) {
	return map[string]string{
		"book_hash":     m.BookHash,
		"album":         m.Album,
		"artist":        m.Artist,
		"album_artist":  m.AlbumArtist,
		"comment":       m.Comment,
		"composer":      m.Composer,
		"copyright":     m.Copyright,
		"genre":         m.Genre,
		"compilation":   m.Compilation,
		"title":         m.Title,
		"track":         m.Track,
		"released_year": m.ReleasedYear,
		"image":         m.ImageURL,
		"description":   m.Description,
		"created_at":    m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// UnmarshalFields implements store.Record.
func (m *Metadata) UnmarshalFields(fields map[string]string) error {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		createdAt = time.Time{}
	}
	m.BookHash = fields["book_hash"]
	m.Album = fields["album"]
	m.Artist = fields["artist"]
	m.AlbumArtist = fields["album_artist"]
	m.Comment = fields["comment"]
	m.Composer = fields["composer"]
	m.Copyright = fields["copyright"]
	m.Genre = fields["genre"]
	m.Compilation = fields["compilation"]
	m.Title = fields["title"]
	m.Track = fields["track"]
	m.ReleasedYear = fields["released_year"]
	m.ImageURL = fields["image"]
	m.Description = fields["description"]
	m.CreatedAt = createdAt
	return nil
}
