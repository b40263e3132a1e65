package room

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/auth"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// HandleJoin runs the join procedure (§4.6):
//  1. count the attempt against the IP bucket; reject if exhausted.
//  2. resolve auth via one of the two §4.3 paths.
//  3. ensureLoaded.
//  4. register the session and reply with `joined`.
//  5. broadcast the updated roster to everyone already joined.
func (r *Room) HandleJoin(ctx context.Context, s *Session, msg *protocol.JoinMessage, ip string) {
	if !r.joinAttempts.Allow(ip, time.Now()) {
		r.closeSession(s, 1008, "Too many join attempts; try again later")
		return
	}

	var role types.RoleType
	var userID types.UserIDType
	switch msg.Auth.Kind {
	case protocol.AuthOwner:
		uid, err := r.resolver.ResolveOwner(ctx, r.boardID, msg.Auth.SupabaseJWT)
		if err != nil {
			r.closeSession(s, 1008, authCloseMessage(err))
			return
		}
		role, userID = types.RoleOwner, uid

	case protocol.AuthInvite:
		resolvedRole, err := r.resolver.ResolveInvite(ctx, r.boardID, msg.Auth.InviteToken)
		if err != nil {
			r.closeSession(s, 1008, authCloseMessage(err))
			return
		}
		role = resolvedRole

	default:
		// Unreachable: the validator enforces auth.kind is one of owner/invite.
		r.closeSession(s, 1008, "Invalid join message")
		return
	}

	if err := r.ensureLoaded(ctx); err != nil {
		r.closeSession(s, 1011, "Internal error")
		return
	}

	r.joinAttempts.Reset(ip)

	guestID := types.GuestIDType("")
	displayName := "Guest"
	var color string
	if msg.Client != nil {
		if msg.Client.GuestID != "" {
			guestID = types.GuestIDType(msg.Client.GuestID)
		}
		if msg.Client.DisplayName != "" {
			displayName = msg.Client.DisplayName
		}
		color = msg.Client.Color
	}
	if role != types.RoleOwner && guestID == "" {
		guestID = types.GuestIDType(uuid.NewString())
	}

	r.mu.Lock()
	if s.joinTimer != nil {
		s.joinTimer.Stop()
		s.joinTimer = nil
	}
	s.joined = true
	s.role = role
	s.userID = userID
	s.guestID = guestID
	s.displayName = displayName
	s.color = color
	r.sessions[s] = struct{}{}

	stateCopy := r.state.Clone()
	roster := r.rosterLocked()
	joinedMsg := protocol.JoinedMessage{
		Type:        protocol.ServerJoined,
		BoardID:     string(r.boardID),
		Role:        role,
		Seq:         r.seq,
		Snapshot:    &stateCopy,
		SnapshotSeq: seqPtr(r.seq),
		Users:       roster,
	}
	presenceMsg := protocol.PresenceBroadcast{
		Type:             protocol.ServerPresence,
		BoardID:          string(r.boardID),
		Users:            roster,
		PresenceByUserID: r.presence.snapshot(),
	}
	recipients := r.joinedSessionsLocked()
	metrics.RoomSessions.WithLabelValues(string(r.boardID)).Set(float64(len(r.sessions)))
	r.mu.Unlock()

	_ = s.conn.Send(joinedMsg)
	for _, rec := range recipients {
		if rec == s {
			continue
		}
		_ = rec.conn.Send(presenceMsg)
	}
}

func seqPtr(seq types.Seq) *types.Seq {
	return &seq
}

// authCloseMessage maps the auth package's fixed error vocabulary to the
// client-facing close reason named by §4.3/§8.
func authCloseMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidOwnerToken):
		return "Invalid owner token"
	case errors.Is(err, auth.ErrNotBoardOwner):
		return "Not board owner"
	case errors.Is(err, auth.ErrInvalidInviteToken):
		return "Invalid invite token"
	case errors.Is(err, auth.ErrInviteRevoked):
		return "Invite revoked"
	case errors.Is(err, auth.ErrInviteExpired):
		return "Invite expired"
	case errors.Is(err, auth.ErrBoardNotFound):
		return "Board not found"
	default:
		return "Internal error"
	}
}
