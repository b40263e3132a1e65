package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

func TestSnapshotDueLocked_NoOpsNeverDue(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	r.mu.Lock()
	r.opsSinceSnapshot = 0
	r.lastSnapshotPersistAt = time.Now().Add(-time.Hour)
	due := r.snapshotDueLocked(time.Now())
	r.mu.Unlock()
	assert.False(t, due)
}

func TestSnapshotDueLocked_OpsThreshold(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.lastSnapshotPersistAt = time.Now()
	due := r.snapshotDueLocked(time.Now())
	r.mu.Unlock()
	assert.True(t, due)
}

func TestSnapshotDueLocked_TimeThreshold(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	r.mu.Lock()
	r.opsSinceSnapshot = 1
	r.lastSnapshotPersistAt = time.Now().Add(-(SnapshotTimeMS + time.Second))
	due := r.snapshotDueLocked(time.Now())
	r.mu.Unlock()
	assert.True(t, due)
}

func TestSnapshotDueLocked_NotYetDue(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	r.mu.Lock()
	r.opsSinceSnapshot = 1
	r.lastSnapshotPersistAt = time.Now()
	due := r.snapshotDueLocked(time.Now())
	r.mu.Unlock()
	assert.False(t, due)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition never became true within %s", timeout)
}

func TestTriggerSnapshot_PersistsAndResetsCounters(t *testing.T) {
	st := &fakeStore{}
	r := newTestRoom(t, st, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))

	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.mu.Unlock()

	r.triggerSnapshot()
	waitUntil(t, time.Second, func() bool { return st.insertedCount() == 1 })

	r.mu.Lock()
	ops := r.opsSinceSnapshot
	inFlight := r.snapshotInFlight
	r.mu.Unlock()
	assert.Equal(t, 0, ops)
	assert.False(t, inFlight)
	assert.Equal(t, types.Seq(0), st.updatedTo)
}

func TestTriggerSnapshot_SingleInFlightWriter(t *testing.T) {
	st := &fakeStore{block: make(chan struct{})}
	r := newTestRoom(t, st, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))

	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.mu.Unlock()

	r.triggerSnapshot() // blocks inside InsertSnapshot until st.block is closed
	waitUntil(t, time.Second, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.snapshotInFlight
	})

	// A second attempt while the first is still in flight must be a no-op.
	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.mu.Unlock()
	r.triggerSnapshot()

	close(st.block)
	waitUntil(t, time.Second, func() bool { return st.insertedCount() == 1 })
	// give the (single) writer goroutine time to finish resetting flags;
	// a second writer would have produced a second insert by now.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, st.insertedCount())
}

func TestTriggerSnapshot_MinRetryFloorBlocksImmediateRetry(t *testing.T) {
	st := &fakeStore{}
	r := newTestRoom(t, st, nil)
	require.NoError(t, r.ensureLoaded(context.Background()))

	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.mu.Unlock()
	r.triggerSnapshot()
	waitUntil(t, time.Second, func() bool { return st.insertedCount() == 1 })

	r.mu.Lock()
	r.opsSinceSnapshot = SnapshotOpInterval
	r.mu.Unlock()
	r.triggerSnapshot() // within SnapshotMinRetryMS of the first attempt

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, st.insertedCount(), "a retry inside the min-retry floor must be skipped")
}
