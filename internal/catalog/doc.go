// Package catalog defines the pipeline's durable entities: chapters, books,
// book-level metadata, scraped chapter content, and dead letters. Identity
// for every entity is a deterministic content fingerprint, so records double
// as idempotency keys.
package catalog
