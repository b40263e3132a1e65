package room

import (
	"time"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// presenceResult mirrors opResult for the presence path.
type presenceResult struct {
	closeMsg   string
	errMsg     *protocol.ErrorMessage
	broadcast  *protocol.PresenceBroadcast
	recipients []*Session
}

// HandlePresence updates s's ephemeral presence entry and rebroadcasts the
// roster + per-user presence map to every joined session (§4.6, §4.7).
func (r *Room) HandlePresence(s *Session, msg *protocol.PresenceMessage) {
	res := r.processPresence(s, msg)

	switch {
	case res.closeMsg != "":
		r.closeSession(s, 1008, res.closeMsg)
	case res.errMsg != nil:
		_ = s.conn.Send(*res.errMsg)
	case res.broadcast != nil:
		for _, rec := range res.recipients {
			_ = rec.conn.Send(*res.broadcast)
		}
		r.publishPresence(*res.broadcast)
	}
}

func (r *Room) processPresence(s *Session, msg *protocol.PresenceMessage) presenceResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !s.joined {
		return presenceResult{closeMsg: "Must join first"}
	}
	if !s.presenceWindow.Allow(time.Now()) {
		e := protocol.NewError(string(r.boardID), types.ErrRateLimited, "Too many presence updates", false)
		return presenceResult{errMsg: &e}
	}

	r.presence.set(s.UserKey(), msg.Presence)
	pm := protocol.PresenceBroadcast{
		Type:             protocol.ServerPresence,
		BoardID:          string(r.boardID),
		Users:            r.rosterLocked(),
		PresenceByUserID: r.presence.snapshot(),
	}
	return presenceResult{broadcast: &pm, recipients: r.joinedSessionsLocked()}
}

// HandlePing replies with a pong carrying the same client timestamp. Pings
// don't advance any rate-limit bucket; they exist purely for RTT probing.
func (r *Room) HandlePing(s *Session, msg *protocol.PingMessage) {
	r.mu.Lock()
	joined := s.joined
	r.mu.Unlock()

	if !joined {
		r.closeSession(s, 1008, "Must join first")
		return
	}

	metrics.WebsocketEvents.WithLabelValues("ping", "ok").Inc()
	_ = s.conn.Send(protocol.NewPong(msg.T))
}
