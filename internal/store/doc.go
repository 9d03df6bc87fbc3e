// Package store persists pipeline entities in Redis as flat field-value
// records with secondary set-indices, and doubles as the locking and dedup
// substrate for the remote-sync and enrichment stages.
package store
