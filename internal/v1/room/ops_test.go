package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/board"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

func joinedSession(t *testing.T, r *Room, role types.RoleType) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := r.Accept(conn, "1.1.1.1")
	r.mu.Lock()
	s.joined = true
	s.role = role
	s.userID = types.UserIDType("user-" + string(role))
	r.sessions[s] = struct{}{}
	r.mu.Unlock()
	return s, conn
}

func createOp(objectID string) board.Event {
	return board.Event{
		ID:   objectID,
		Type: board.EventObjectCreated,
		Payload: board.EventPayload{
			Object: &board.Object{ID: objectID, Kind: board.KindRectangle, Width: 10, Height: 10},
		},
	}
}

func TestHandleOp_Accepted_IncrementsSeqAndBroadcasts(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))

	editor, editorConn := joinedSession(t, r, types.RoleEditor)
	_, viewerConn := joinedSession(t, r, types.RoleViewer)

	r.HandleOp(context.Background(), editor, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-1", Op: createOp("obj-1"),
	})

	require.Equal(t, types.Seq(1), r.seq)
	require.Len(t, editorConn.messages(), 1)
	ob, ok := editorConn.messages()[0].(protocol.OpBroadcast)
	require.True(t, ok)
	assert.Equal(t, types.Seq(1), ob.Seq)
	require.Len(t, viewerConn.messages(), 1)
}

func TestHandleOp_ViewerForbidden(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))
	viewer, conn := joinedSession(t, r, types.RoleViewer)

	r.HandleOp(context.Background(), viewer, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-1", Op: createOp("obj-1"),
	})

	require.Equal(t, types.Seq(0), r.seq)
	require.Len(t, conn.messages(), 1)
	errMsg, ok := conn.messages()[0].(protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, types.ErrForbidden, errMsg.Code)
	assert.False(t, conn.isClosed())
}

func TestHandleOp_ObjectLimitRejected(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))
	editor, conn := joinedSession(t, r, types.RoleEditor)

	r.mu.Lock()
	objs := make([]board.Object, protocol.MaxObjectsPerBoard)
	r.state.Objects = objs
	r.mu.Unlock()

	r.HandleOp(context.Background(), editor, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-1", Op: createOp("obj-new"),
	})

	require.Len(t, conn.messages(), 1)
	errMsg, ok := conn.messages()[0].(protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, types.ErrForbidden, errMsg.Code)
	assert.Equal(t, types.Seq(0), r.seq)
}

func TestHandleOp_IdempotentReplay_ReturnsCachedBroadcastToSubmitterOnly(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))
	editor, editorConn := joinedSession(t, r, types.RoleEditor)
	_, otherConn := joinedSession(t, r, types.RoleEditor)

	op := &protocol.OpMessage{Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "dup-1", Op: createOp("obj-1")}
	r.HandleOp(context.Background(), editor, op)
	require.Equal(t, types.Seq(1), r.seq)

	r.HandleOp(context.Background(), editor, op)
	require.Equal(t, types.Seq(1), r.seq, "replay must not re-invoke the reducer or bump seq")

	msgs := editorConn.messages()
	require.Len(t, msgs, 2, "submitter gets the original broadcast, then the replayed one")
	ob2, ok := msgs[1].(protocol.OpBroadcast)
	require.True(t, ok)
	assert.Equal(t, types.Seq(1), ob2.Seq)

	// The other session only saw the original broadcast, never a second one
	// for the replay.
	assert.Len(t, otherConn.messages(), 1)
}

func TestHandleOp_ReducerRejection_NoSeqBump(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))
	editor, conn := joinedSession(t, r, types.RoleEditor)

	op := createOp("dup-id")
	r.HandleOp(context.Background(), editor, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-1", Op: op,
	})
	require.Equal(t, types.Seq(1), r.seq)

	// Same object id again via a distinct clientOpId so it isn't served from
	// the idempotency cache; the reducer itself must reject the duplicate.
	r.HandleOp(context.Background(), editor, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-2", Op: op,
	})

	require.Equal(t, types.Seq(1), r.seq, "a reducer-rejected op must not bump seq")
	msgs := conn.messages()
	require.Len(t, msgs, 2)
	errMsg, ok := msgs[1].(protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, types.ErrForbidden, errMsg.Code)
}

func TestHandleOp_NotJoined_Closes(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))

	conn := &fakeConn{}
	s := r.Accept(conn, "1.1.1.1")

	r.HandleOp(context.Background(), s, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-1", Op: createOp("obj-1"),
	})

	require.True(t, conn.isClosed())
	assert.Equal(t, 1008, conn.code)
}

func TestHandleOp_PerClientRateLimitRejected(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))
	editor, conn := joinedSession(t, r, types.RoleEditor)

	for i := 0; i < MaxOpsPer10sPerClient; i++ {
		r.HandleOp(context.Background(), editor, &protocol.OpMessage{
			Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "op-" + string(rune('a'+i)), Op: createOp("obj-" + string(rune('a'+i))),
		})
	}
	require.Equal(t, types.Seq(MaxOpsPer10sPerClient), r.seq)
	conn.mu.Lock()
	conn.sent = nil
	conn.mu.Unlock()

	r.HandleOp(context.Background(), editor, &protocol.OpMessage{
		Type: protocol.ClientOp, BoardID: "board-1", ClientOpID: "overflow", Op: createOp("obj-overflow"),
	})
	require.Equal(t, types.Seq(MaxOpsPer10sPerClient), r.seq, "rate-limited op must not reach the reducer")
	msgs := conn.messages()
	require.Len(t, msgs, 1)
	errMsg, ok := msgs[0].(protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, types.ErrRateLimited, errMsg.Code)
}
