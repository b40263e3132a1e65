package room

import "github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"

// presenceTable holds the most recent ephemeral presence payload per user
// key (§3's "PresenceTable"). Entries are never persisted and are dropped
// the instant their session disconnects — there is no TTL here, unlike the
// idempotency cache, because disconnect is always observed directly.
type presenceTable struct {
	byUserKey map[string]protocol.PresencePayload
}

func newPresenceTable() *presenceTable {
	return &presenceTable{byUserKey: make(map[string]protocol.PresencePayload)}
}

func (p *presenceTable) set(userKey string, payload protocol.PresencePayload) {
	p.byUserKey[userKey] = payload
}

func (p *presenceTable) delete(userKey string) {
	delete(p.byUserKey, userKey)
}

// snapshot returns a copy safe to hand to a broadcast built while the
// room's lock is held.
func (p *presenceTable) snapshot() map[string]protocol.PresencePayload {
	if len(p.byUserKey) == 0 {
		return nil
	}
	out := make(map[string]protocol.PresencePayload, len(p.byUserKey))
	for k, v := range p.byUserKey {
		out[k] = v
	}
	return out
}
