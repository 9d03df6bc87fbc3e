// Package scraper is the scraping collaborator: it renders pages through a
// headless-browser service and extracts chapter lists, chapter text, and
// book metadata with narrow selector-based parsers.
package scraper
