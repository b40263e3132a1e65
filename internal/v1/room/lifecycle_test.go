package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// TestRoom_Close_WaitsForInFlightSnapshot exercises the path goleak cares
// about most: Close must not return (and leak the persist goroutine) while
// a snapshot write is still running.
func TestRoom_Close_WaitsForInFlightSnapshot(t *testing.T) {
	st := &fakeStore{block: make(chan struct{})}
	r := NewRoom(types.BoardIDType("board-1"), st, newFakeResolver(), nil, "test-instance", nil)
	require.NoError(t, r.ensureLoaded(context.Background()))

	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.mu.Unlock()
	r.triggerSnapshot()
	waitUntil(t, time.Second, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.snapshotInFlight
	})

	closeDone := make(chan struct{})
	go func() {
		r.Close(context.Background())
		close(closeDone)
	}()

	select {
	case <-closeDone:
		t.Fatal("Close returned before the in-flight snapshot writer finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(st.block)
	select {
	case <-closeDone:
	case <-time.After(time.Second):
		t.Fatal("Close never returned after the snapshot writer finished")
	}
}

// TestRoom_Close_ClosesJoinedSessionsWithShutdownFrame exercises the normal
// shutdown path and confirms the background ticker/gcLoop goroutine also
// exits, which goleak's TestMain verifies globally.
func TestRoom_Close_ClosesJoinedSessionsWithShutdownFrame(t *testing.T) {
	r := NewRoom(types.BoardIDType("board-1"), &fakeStore{}, newFakeResolver(), nil, "test-instance", nil)
	_, conn := joinedSession(t, r, types.RoleEditor)

	r.Close(context.Background())

	require.True(t, conn.isClosed())
	assert.Equal(t, 1001, conn.code)
}

// TestManager_Shutdown_PropagatesToEachRoomsGoroutines guards against a
// leaked gcLoop goroutine per room when the manager tears everything down.
func TestManager_Shutdown_PropagatesToEachRoomsGoroutines(t *testing.T) {
	m := NewManager(&fakeStore{}, newFakeResolver(), nil)
	_ = m.GetOrCreate("board-1")
	_ = m.GetOrCreate("board-2")

	done := make(chan struct{})
	go func() {
		m.Shutdown(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Manager.Shutdown did not return")
	}
}
