package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_SetsReadLimit(t *testing.T) {
	conn := &mockConn{}
	NewConnection(conn)
	assert.True(t, conn.setReadLimitCalled)
}

func TestConnection_Send_WritesJSONTextFrame(t *testing.T) {
	conn := &mockConn{}
	c := NewConnection(conn)

	require.NoError(t, c.Send(map[string]string{"type": "hello"}))
	require.Len(t, conn.writes, 1)
	assert.Contains(t, string(conn.writes[0]), `"type":"hello"`)
}

func TestConnection_Send_PropagatesWriteError(t *testing.T) {
	wantErr := errors.New("broken pipe")
	conn := &mockConn{WriteMessageFunc: func(int, []byte) error { return wantErr }}
	c := NewConnection(conn)

	err := c.Send(map[string]string{"type": "hello"})
	assert.ErrorIs(t, err, wantErr)
}

func TestConnection_Close_SendsCloseFrameThenCloses(t *testing.T) {
	conn := &mockConn{}
	c := NewConnection(conn)

	require.NoError(t, c.Close(1008, "policy violation"))
	assert.Equal(t, websocket.CloseMessage, conn.controlCode)
	assert.Equal(t, 1, conn.closeCalls)
}

func TestConnection_Close_StillClosesIfControlWriteFails(t *testing.T) {
	conn := &mockConn{WriteControlFunc: func(int, []byte, time.Time) error { return errors.New("timeout") }}
	c := NewConnection(conn)

	require.NoError(t, c.Close(1011, "internal error"))
	assert.Equal(t, 1, conn.closeCalls)
}
