package catalog

// ChapterContent is the scraped text body of one chapter, keyed by the
// chapter fingerprint. Immutable once written except for explicit updates.
type ChapterContent struct {
	ChapterHash string
	Title       string
	Content     string
	URL         string
}

// Kind implements store.Record.
func (c *ChapterContent) Kind() string { return KindChapterContent }

// Key implements store.Record.
func (c *ChapterContent) Key() string { return c.ChapterHash }

// MarshalFields implements store.Record.
func (c *ChapterContent) MarshalFields() (map[string]string, error) {
	return map[string]string{
		"chapter_hash": c.ChapterHash,
		"title":        c.Title,
		"content":      c.Content,
		"url":          c.URL,
	}, nil
}

// UnmarshalFields implements store.Record.
func (c *ChapterContent) UnmarshalFields(fields map[string]string) error {
	c.ChapterHash = fields["chapter_hash"]
	c.Title = fields["title"]
	c.Content = fields["content"]
	c.URL = fields["url"]
	return nil
}
