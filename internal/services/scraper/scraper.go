package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lorecast/internal/catalog"
)

// ErrNoResult is returned when a page rendered but yielded nothing usable.
var ErrNoResult = errors.New("scraper: no result")

// BookListing is the scraped chapter index of a book.
type BookListing struct {
	Title    string
	Chapters []catalog.ChapterLink
}

// Service is the scraping collaborator contract consumed by the discovery,
// enrichment, and chapter-scrape stages.
type Service interface {
	BookChapters(ctx context.Context, url string) (*BookListing, error)
	ChapterContent(ctx context.Context, url string) (*catalog.ChapterContent, error)
	BookMetadata(ctx context.Context, url string) (*catalog.Metadata, error)
}

// Client fetches rendered pages and extracts the narrow data slices the
// pipeline needs.
type Client struct {
	fetch Fetcher
}

// New builds a scraper client over the given fetcher.
func New(fetch Fetcher) *Client {
	return &Client{fetch: fetch}
}

// BookChapters scrapes a book's full chapter-link list.
func (c *Client) BookChapters(ctx context.Context, url string) (*BookListing, error) {
	page, err := c.fetch.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	listing, err := parseBookListing(page)
	if err != nil {
		return nil, fmt.Errorf("book listing %s: %w", url, err)
	}
	return listing, nil
}

// ChapterContent scrapes one chapter's title and text body. The chapter
// fingerprint is assigned by the caller.
func (c *Client) ChapterContent(ctx context.Context, url string) (*catalog.ChapterContent, error) {
	page, err := c.fetch.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	content, err := parseChapterContent(page)
	if err != nil {
		return nil, fmt.Errorf("chapter content %s: %w", url, err)
	}
	content.URL = url
	return content, nil
}

// BookMetadata scrapes descriptive tags from a book's metadata page.
func (c *Client) BookMetadata(ctx context.Context, url string) (*catalog.Metadata, error) {
	page, err := c.fetch.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	meta, err := parseBookMetadata(page)
	if err != nil {
		return nil, fmt.Errorf("book metadata %s: %w", url, err)
	}
	meta.CreatedAt = time.Now().UTC()
	return meta, nil
}

var _ Service = (*Client)(nil)
