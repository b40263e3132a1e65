package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

func TestHandlePresence_NotJoined_Closes(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	conn := &fakeConn{}
	s := r.Accept(conn, "1.1.1.1")

	r.HandlePresence(s, &protocol.PresenceMessage{Type: protocol.ClientPresence, BoardID: "board-1"})

	require.True(t, conn.isClosed())
	assert.Equal(t, 1008, conn.code)
}

func TestHandlePresence_BroadcastsRosterAndPresence(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	a, connA := joinedSession(t, r, types.RoleEditor)
	_, connB := joinedSession(t, r, types.RoleViewer)

	typing := true
	r.HandlePresence(a, &protocol.PresenceMessage{
		Type: protocol.ClientPresence, BoardID: "board-1",
		Presence: protocol.PresencePayload{IsTyping: &typing},
	})

	for _, conn := range []*fakeConn{connA, connB} {
		msgs := conn.messages()
		require.Len(t, msgs, 1)
		pm, ok := msgs[0].(protocol.PresenceBroadcast)
		require.True(t, ok)
		assert.Len(t, pm.Users, 2)
		entry, present := pm.PresenceByUserID[a.UserKey()]
		require.True(t, present)
		require.NotNil(t, entry.IsTyping)
		assert.True(t, *entry.IsTyping)
	}
}

func TestHandlePresence_PerClientRateLimitRejected(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	s, conn := joinedSession(t, r, types.RoleViewer)

	for i := 0; i < MaxPresencePer10sPerClient; i++ {
		r.HandlePresence(s, &protocol.PresenceMessage{Type: protocol.ClientPresence, BoardID: "board-1"})
	}
	conn.mu.Lock()
	conn.sent = nil
	conn.mu.Unlock()

	r.HandlePresence(s, &protocol.PresenceMessage{Type: protocol.ClientPresence, BoardID: "board-1"})

	msgs := conn.messages()
	require.Len(t, msgs, 1)
	errMsg, ok := msgs[0].(protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, types.ErrRateLimited, errMsg.Code)
	assert.False(t, conn.isClosed())
}

func TestHandleDisconnect_RemovesPresenceAndBroadcasts(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	a, connA := joinedSession(t, r, types.RoleEditor)
	b, connB := joinedSession(t, r, types.RoleViewer)

	r.HandleDisconnect(b)

	msgsA := connA.messages()
	require.Len(t, msgsA, 1)
	pm, ok := msgsA[0].(protocol.PresenceBroadcast)
	require.True(t, ok)
	assert.Len(t, pm.Users, 1)
	assert.Equal(t, a.UserKey(), pm.Users[0].UserID)

	// b is gone, so it gets nothing further.
	assert.Empty(t, connB.messages())
	assert.False(t, r.IsEmpty())
}

func TestHandlePing_RepliesWithPong(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	s, conn := joinedSession(t, r, types.RoleViewer)

	r.HandlePing(s, &protocol.PingMessage{Type: protocol.ClientPing, T: 42})

	msgs := conn.messages()
	require.Len(t, msgs, 1)
	pong, ok := msgs[0].(protocol.PongMessage)
	require.True(t, ok)
	assert.Equal(t, int64(42), pong.T)
}

func TestHandlePing_NotJoined_Closes(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	conn := &fakeConn{}
	s := r.Accept(conn, "1.1.1.1")

	r.HandlePing(s, &protocol.PingMessage{Type: protocol.ClientPing, T: 1})

	require.True(t, conn.isClosed())
	assert.Equal(t, 1008, conn.code)
}
