package room

import (
	"context"
	"encoding/json"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/bus"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"go.uber.org/zap"
)

// fanoutOp / fanoutPresence event names on the bus, distinct from the wire
// protocol's message types so a subscriber doesn't need protocol.ParsedMessage
// to tell them apart.
const (
	fanoutOp       = "op"
	fanoutPresence = "presence"
)

// publishOp best-effort notifies other instances of an accepted op. A
// Room is still the single authoritative writer for its board (§2); this
// only extends visibility to sessions a non-sticky load balancer may have
// routed to a different instance for the same board. Failures are logged,
// never surfaced to the submitting client — the local broadcast already
// happened.
func (r *Room) publishOp(ob protocol.OpBroadcast) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(context.Background(), string(r.boardID), fanoutOp, ob, r.instanceID, nil); err != nil {
		logging.Warn(context.Background(), "bus publish op failed", zap.Error(err))
	}
}

func (r *Room) publishPresence(pm protocol.PresenceBroadcast) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(context.Background(), string(r.boardID), fanoutPresence, pm, r.instanceID, nil); err != nil {
		logging.Warn(context.Background(), "bus publish presence failed", zap.Error(err))
	}
}

// handleRemote is the bus.Subscribe handler: it relays another instance's
// accepted op/presence to this instance's own locally joined sessions. It
// never re-applies the op to local state and never republishes, so a
// message makes at most one hop between instances.
func (r *Room) handleRemote(payload bus.PubSubPayload) {
	if payload.SenderID == r.instanceID {
		return
	}

	switch payload.Event {
	case fanoutOp:
		var ob protocol.OpBroadcast
		if err := json.Unmarshal(payload.Payload, &ob); err != nil {
			return
		}
		r.mu.Lock()
		recipients := r.joinedSessionsLocked()
		r.mu.Unlock()
		for _, s := range recipients {
			_ = s.conn.Send(ob)
		}

	case fanoutPresence:
		var pm protocol.PresenceBroadcast
		if err := json.Unmarshal(payload.Payload, &pm); err != nil {
			return
		}
		r.mu.Lock()
		recipients := r.joinedSessionsLocked()
		r.mu.Unlock()
		for _, s := range recipients {
			_ = s.conn.Send(pm)
		}
	}
}
