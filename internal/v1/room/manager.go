package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/bus"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// Manager owns the set of live Rooms, one per board with at least one
// recent session. Grounded on the teacher's Hub room registry: get-or-create
// on demand, grace-period cleanup once a room empties out so a client that
// reconnects immediately doesn't pay a fresh ensureLoaded round trip.
type Manager struct {
	store      SnapshotStore
	resolver   AuthResolver
	bus        *bus.Service
	instanceID string

	mu    sync.Mutex
	rooms map[types.BoardIDType]*Room
}

// NewManager builds a Manager. busService may be nil (single-instance mode).
// Each Manager gets its own instanceID, used to tag bus fan-out so a Room
// never re-processes its own published messages.
func NewManager(store SnapshotStore, resolver AuthResolver, busService *bus.Service) *Manager {
	return &Manager{
		store:      store,
		resolver:   resolver,
		bus:        busService,
		instanceID: uuid.NewString(),
		rooms:      make(map[types.BoardIDType]*Room),
	}
}

// GetOrCreate returns the live Room for boardID, creating one if none
// exists yet. The returned room's state is not guaranteed loaded; callers
// that need state call ensureLoaded indirectly via HandleJoin/HandleOp.
func (m *Manager) GetOrCreate(boardID types.BoardIDType) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[boardID]; ok {
		return r
	}
	r := NewRoom(boardID, m.store, m.resolver, m.bus, m.instanceID, m.ScheduleCleanup)
	m.rooms[boardID] = r
	return r
}

// ScheduleCleanup checks back on boardID after roomCleanupGrace and tears
// the room down if it is still empty. Call this after a session disconnect
// leaves a room with no joined sessions.
func (m *Manager) ScheduleCleanup(boardID types.BoardIDType) {
	time.AfterFunc(roomCleanupGrace, func() {
		m.mu.Lock()
		r, ok := m.rooms[boardID]
		if !ok {
			m.mu.Unlock()
			return
		}
		if !r.IsEmpty() {
			m.mu.Unlock()
			return
		}
		delete(m.rooms, boardID)
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.Close(ctx)
	})
}

// Count reports the number of currently tracked rooms, for diagnostics.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Shutdown closes every tracked room, bounded by ctx.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[types.BoardIDType]*Room)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range rooms {
		wg.Add(1)
		go func(r *Room) {
			defer wg.Done()
			r.Close(ctx)
		}(r)
	}
	wg.Wait()
}
