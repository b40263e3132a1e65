package room

import (
	"time"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/ratelimit"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// Session is one connected websocket channel, pre- or post-join. Its
// mutable fields are only ever touched while the owning Room's mutex is
// held; transport only ever calls into Room methods, never reaches in
// directly.
type Session struct {
	conn ChannelHandle
	ip   string

	joined      bool
	role        types.RoleType
	userID      types.UserIDType
	guestID     types.GuestIDType
	displayName string
	color       string

	joinTimer *time.Timer

	opWindow       *ratelimit.Window
	presenceWindow *ratelimit.Window
}

// newSession builds a pre-join Session wrapping conn.
func newSession(conn ChannelHandle, ip string) *Session {
	return &Session{
		conn:           conn,
		ip:             ip,
		opWindow:       ratelimit.NewWindow(MaxOpsPer10sPerClient, ClientRateWindow),
		presenceWindow: ratelimit.NewWindow(MaxPresencePer10sPerClient, ClientRateWindow),
	}
}

// UserKey is the presence-table / roster key: the authenticated user id if
// one is set (owner sessions), else the guest id every invite session is
// assigned on join. An owner session that also sent a guest id carries
// both; the user id wins.
func (s *Session) UserKey() string {
	if s.userID != "" {
		return string(s.userID)
	}
	return string(s.guestID)
}

// AuthorID is the id recorded against ops this session submits. Same
// precedence as UserKey; falls back to "unknown" only if somehow neither is
// set (shouldn't happen post-join, since join always assigns a guest id to
// non-owner sessions).
func (s *Session) AuthorID() string {
	if key := s.UserKey(); key != "" {
		return key
	}
	return "unknown"
}

// Joined reports whether this session has completed the join procedure.
func (s *Session) Joined() bool {
	return s.joined
}

// Role reports the session's current permission level.
func (s *Session) Role() types.RoleType {
	return s.role
}
