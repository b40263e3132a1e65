package room

import (
	"time"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/board"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// idempotencyRecord is what a duplicate clientOpId replays: the exact
// broadcast the first submission produced, so a retried op is re-served
// instead of re-applied (§4.6's "the reducer never sees the same
// clientOpId twice").
type idempotencyRecord struct {
	seq       types.Seq
	op        board.Event
	authorID  string
	expiresAt time.Time
}

// idempotencyCache holds one record per clientOpId for ProcessedOpTTL,
// swept opportunistically by whichever goroutine next touches the cache
// (op processing, or the room's background ticker) rather than on its own
// timer per entry — this is a single-writer, room-owned cache guarded by
// the Room's mutex, so it never needs its own locking.
type idempotencyCache struct {
	records map[types.ClientOpIDType]idempotencyRecord
	ttl     time.Duration
}

func newIdempotencyCache(ttl time.Duration) *idempotencyCache {
	return &idempotencyCache{records: make(map[types.ClientOpIDType]idempotencyRecord), ttl: ttl}
}

// get returns the cached record for id, if present and unexpired.
func (c *idempotencyCache) get(id types.ClientOpIDType, now time.Time) (idempotencyRecord, bool) {
	rec, ok := c.records[id]
	if !ok || now.After(rec.expiresAt) {
		return idempotencyRecord{}, false
	}
	return rec, true
}

// put stores id's result, superseding any prior entry.
func (c *idempotencyCache) put(id types.ClientOpIDType, seq types.Seq, op board.Event, authorID string, now time.Time) {
	c.records[id] = idempotencyRecord{seq: seq, op: op, authorID: authorID, expiresAt: now.Add(c.ttl)}
}

// gc drops every entry that has outlived its ttl.
func (c *idempotencyCache) gc(now time.Time) {
	for id, rec := range c.records {
		if now.After(rec.expiresAt) {
			delete(c.records, id)
		}
	}
}
