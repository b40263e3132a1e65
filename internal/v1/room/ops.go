package room

import (
	"context"
	"time"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/board"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// opResult is what processOp decides while holding the lock; HandleOp sends
// based on it after releasing the lock.
type opResult struct {
	closeMsg    string
	errMsg      *protocol.ErrorMessage
	broadcast   *protocol.OpBroadcast
	recipients  []*Session
	snapshotDue bool
	fanout      bool
}

// HandleOp applies one client op (§4.6's op-processing steps): not-joined
// and viewer checks, the board-size cap, the per-client rate limit,
// idempotent replay, then the reducer itself.
func (r *Room) HandleOp(ctx context.Context, s *Session, msg *protocol.OpMessage) {
	if err := r.ensureLoaded(ctx); err != nil {
		r.closeSession(s, 1011, "Internal error")
		return
	}

	res := r.processOp(s, msg)

	switch {
	case res.closeMsg != "":
		r.closeSession(s, 1008, res.closeMsg)
	case res.errMsg != nil:
		_ = s.conn.Send(*res.errMsg)
		metrics.OpsTotal.WithLabelValues("rejected").Inc()
	case res.broadcast != nil:
		for _, rec := range res.recipients {
			_ = rec.conn.Send(*res.broadcast)
		}
		metrics.OpsTotal.WithLabelValues("accepted").Inc()
		if res.fanout {
			r.publishOp(*res.broadcast)
		}
	}

	if res.snapshotDue {
		r.triggerSnapshot()
	}
}

func (r *Room) processOp(s *Session, msg *protocol.OpMessage) opResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !s.joined {
		return opResult{closeMsg: "Must join first"}
	}
	if !s.role.CanMutate() {
		e := protocol.NewError(string(r.boardID), types.ErrForbidden, "Viewer cannot send ops", false)
		return opResult{errMsg: &e}
	}

	if msg.Op.Type == board.EventObjectCreated && len(r.state.Objects) >= protocol.MaxObjectsPerBoard {
		e := protocol.NewError(string(r.boardID), types.ErrForbidden, "Board is too large", false)
		return opResult{errMsg: &e}
	}

	now := time.Now()
	if !s.opWindow.Allow(now) {
		e := protocol.NewError(string(r.boardID), types.ErrRateLimited, "Too many ops", false)
		return opResult{errMsg: &e}
	}

	r.idempotency.gc(now)
	opID := types.ClientOpIDType(msg.ClientOpID)
	if rec, ok := r.idempotency.get(opID, now); ok {
		ob := protocol.OpBroadcast{
			Type:       protocol.ServerOp,
			BoardID:    string(r.boardID),
			Seq:        rec.seq,
			Op:         rec.op,
			AuthorID:   rec.authorID,
			ClientOpID: msg.ClientOpID,
		}
		metrics.IdempotentReplaysTotal.Inc()
		return opResult{broadcast: &ob, recipients: []*Session{s}}
	}

	next, err := board.Apply(r.state, msg.Op)
	if err != nil {
		e := protocol.NewError(string(r.boardID), types.ErrForbidden, err.Error(), false)
		return opResult{errMsg: &e}
	}

	r.state = next
	r.seq++
	authorID := s.AuthorID()
	r.idempotency.put(opID, r.seq, msg.Op, authorID, now)
	r.opsSinceSnapshot++

	ob := protocol.OpBroadcast{
		Type:       protocol.ServerOp,
		BoardID:    string(r.boardID),
		Seq:        r.seq,
		Op:         msg.Op,
		AuthorID:   authorID,
		ClientOpID: msg.ClientOpID,
	}
	return opResult{
		broadcast:   &ob,
		recipients:  r.joinedSessionsLocked(),
		snapshotDue: r.snapshotDueLocked(now),
		fanout:      true,
	}
}
