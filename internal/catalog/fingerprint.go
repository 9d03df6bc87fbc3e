package catalog

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ChapterFingerprint derives the chapter identity hash from its title and
// source URL. The same inputs always produce the same fingerprint, which is
// what makes chapter records idempotent keys.
func ChapterFingerprint(title, url string) string {
	sum := md5.Sum([]byte(title + ":" + url)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// BookFingerprint derives the book identity hash from its title.
func BookFingerprint(title string) string {
	sum := md5.Sum([]byte(title)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

var slugTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug converts a display name into the path-safe form used for derived
// file locations. Diacritics are stripped so that paths stay ASCII-stable
// across platforms.
func Slug(name string) string {
	normalized, _, err := transform.String(slugTransformer, name)
	if err != nil {
		normalized = name
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(normalized), " ", "_"))
}
