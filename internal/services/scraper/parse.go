package scraper

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"lorecast/internal/catalog"
)

func parseBookListing(page []byte) (*BookListing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("div.desc > h3.title").First().Text())

	var chapters []catalog.ChapterLink
	doc.Find("ul.list-chapter > li > a").Each(func(_ int, sel *goquery.Selection) {
		href, hasHref := sel.Attr("href")
		linkTitle, hasTitle := sel.Attr("title")
		if hasHref && hasTitle {
			chapters = append(chapters, catalog.ChapterLink{Title: linkTitle, URL: href})
		}
	})

	if title == "" || len(chapters) == 0 {
		return nil, ErrNoResult
	}
	return &BookListing{Title: title, Chapters: chapters}, nil
}

func parseChapterContent(page []byte) (*catalog.ChapterContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := strings.TrimSpace(doc.Find("div#chr-content").First().Text())
	title := strings.TrimSpace(doc.Find("a.chr-title").First().Text())
	if title == "" || content == "" {
		return nil, ErrNoResult
	}
	return &catalog.ChapterContent{Title: title, Content: content}, nil
}

func parseBookMetadata(page []byte) (*catalog.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1.Text__title1").First().Text())
	artist := strings.TrimSpace(doc.Find("a.ContributorLink").First().Text())
	image, _ := doc.Find("img.ResponsiveImage").First().Attr("src")
	description := strings.TrimSpace(doc.Find("div.BookPageMetadataSection__description").First().Text())

	var genres []string
	doc.Find("div.BookPageMetadataSection__genres a").Each(func(_ int, sel *goquery.Selection) {
		if g := strings.TrimSpace(sel.Text()); g != "" {
			genres = append(genres, g)
		}
	})

	if title == "" && artist == "" && image == "" {
		return nil, ErrNoResult
	}
	if artist == "" {
		artist = "Unknown Artist"
	}

	return &catalog.Metadata{
		Title:        title,
		Artist:       artist,
		ImageURL:     image,
		Description:  description,
		Genre:        strings.Join(genres, ";"),
		ReleasedYear: strconv.Itoa(time.Now().Year()),
	}, nil
}
