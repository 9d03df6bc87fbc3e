package store

import (
	"context"
	"fmt"
)

// BookChaptersKey names the relationship set holding a book's chapter
// fingerprints.
func BookChaptersKey(bookHash string) string {
	return "book:" + bookHash + ":chapters"
}

// PendingSyncKey names the observability set of books with a sync in flight.
const PendingSyncKey = "sync_pending_books"

// AddSetMember adds a member to a named set.
func (c *Client) AddSetMember(ctx context.Context, set, member string) error {
	if err := c.rdb.SAdd(ctx, set, member).Err(); err != nil {
		return fmt.Errorf("add %s to %s: %w", member, set, err)
	}
	return nil
}

// RemoveSetMember removes a member from a named set.
func (c *Client) RemoveSetMember(ctx context.Context, set, member string) error {
	if err := c.rdb.SRem(ctx, set, member).Err(); err != nil {
		return fmt.Errorf("remove %s from %s: %w", member, set, err)
	}
	return nil
}

// SetMembers returns all members of a named set.
func (c *Client) SetMembers(ctx context.Context, set string) ([]string, error) {
	members, err := c.rdb.SMembers(ctx, set).Result()
	if err != nil {
		return nil, fmt.Errorf("members of %s: %w", set, err)
	}
	return members, nil
}
