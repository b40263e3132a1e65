// Package room implements the BoardRoom (§4.6): the single authoritative
// per-board actor that owns the board's state, its monotonic seq, the set
// of joined sessions, and the idempotency/presence/rate-limit bookkeeping
// around them. A Room never touches a raw socket — transport adapts a
// gorilla/websocket connection to ChannelHandle and drives Room's exported
// handler methods from its read loop.
package room

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/board"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/bus"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/ratelimit"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
	"go.uber.org/zap"
)

// Room is the BoardRoom. All mutable fields below the mutex line are only
// ever touched while mu is held; every exported handler method follows the
// same shape: lock, mutate, collect who-gets-what, unlock, then send —
// never hold the lock across a channel send or a store call.
type Room struct {
	boardID    types.BoardIDType
	store      SnapshotStore
	resolver   AuthResolver
	bus        *bus.Service
	instanceID string
	onEmpty    func(types.BoardIDType)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	loadGroup singleflight.Group

	mu       sync.Mutex
	loaded   bool
	state    board.State
	seq      types.Seq
	sessions map[*Session]struct{}

	idempotency  *idempotencyCache
	presence     *presenceTable
	joinAttempts *ratelimit.Registry

	opsSinceSnapshot      int
	lastSnapshotAttemptAt time.Time
	lastSnapshotPersistAt time.Time
	snapshotInFlight      bool
}

// NewRoom builds a Room for boardID. State is not loaded from the store
// until the first join reaches ensureLoaded. onEmpty, if non-nil, is called
// (off the mutex) every time a disconnect leaves the room with no joined
// sessions, so a Manager can schedule cleanup.
func NewRoom(boardID types.BoardIDType, store SnapshotStore, resolver AuthResolver, busService *bus.Service, instanceID string, onEmpty func(types.BoardIDType)) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		boardID:               boardID,
		store:                 store,
		resolver:              resolver,
		bus:                   busService,
		instanceID:            instanceID,
		onEmpty:               onEmpty,
		ctx:                   ctx,
		cancel:                cancel,
		sessions:              make(map[*Session]struct{}),
		idempotency:           newIdempotencyCache(ProcessedOpTTL),
		presence:              newPresenceTable(),
		joinAttempts:          ratelimit.NewRegistry(MaxJoinAttemptsPerMinutePerIP, JoinAttemptWindow),
		lastSnapshotPersistAt: time.Now(),
	}
	metrics.ActiveRooms.Inc()
	r.wg.Add(1)
	go r.gcLoop()
	if busService != nil {
		busService.Subscribe(ctx, string(boardID), &r.wg, r.handleRemote)
	}
	return r
}

// BoardID returns the board this room is authoritative for.
func (r *Room) BoardID() types.BoardIDType {
	return r.boardID
}

// IsEmpty reports whether the room currently has no joined sessions, used
// by the Manager to decide whether a room is eligible for cleanup.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions) == 0
}

// gcLoop periodically sweeps the idempotency cache so rooms that see
// presence/ping traffic but few ops still reclaim expired entries.
func (r *Room) gcLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(idempotencyGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case now := <-ticker.C:
			r.mu.Lock()
			r.idempotency.gc(now)
			r.mu.Unlock()
		}
	}
}

// Accept registers a new pre-join session for conn and starts its
// JoinTimeout clock. The caller (transport) owns reading frames from conn
// and dispatching them to Dispatch; Room owns everything else about the
// session's lifecycle from this point on.
func (r *Room) Accept(conn ChannelHandle, ip string) *Session {
	s := newSession(conn, ip)
	s.joinTimer = time.AfterFunc(JoinTimeout, func() { r.handleJoinTimeout(s) })
	metrics.IncConnection()
	return s
}

func (r *Room) handleJoinTimeout(s *Session) {
	r.mu.Lock()
	joined := s.joined
	r.mu.Unlock()
	if joined {
		return
	}
	r.closeSession(s, 1008, "Join timeout")
}

// Dispatch routes one parsed inbound frame to the matching handler. It is
// transport's single entry point into a Room.
func (r *Room) Dispatch(ctx context.Context, s *Session, parsed *protocol.ParsedMessage, ip string) {
	switch parsed.Type {
	case protocol.ClientJoin:
		r.HandleJoin(ctx, s, parsed.Join, ip)
	case protocol.ClientOp:
		r.HandleOp(ctx, s, parsed.Op)
	case protocol.ClientPresence:
		r.HandlePresence(s, parsed.Presence)
	case protocol.ClientPing:
		r.HandlePing(s, parsed.Ping)
	}
}

// closeSession writes a final fatal error frame (§7: every close is
// preceded by an error frame when the channel can still accept one), closes
// the channel, and runs teardown. A second call for the same session sends
// the frame and close again (on a closed channel these fail and are
// ignored); its teardown is a no-op via HandleDisconnect's own idempotency.
func (r *Room) closeSession(s *Session, code int, reason string) {
	errMsg := protocol.NewError(string(r.boardID), closeErrorCode(code), reason, true)
	_ = s.conn.Send(errMsg)
	_ = s.conn.Close(code, reason)
	r.HandleDisconnect(s)
}

func closeErrorCode(wsCode int) types.ErrorCode {
	switch wsCode {
	case 1008:
		return types.ErrUnauthorized
	case 1009:
		return types.ErrPayloadTooLarge
	default:
		return types.ErrServerError
	}
}

// HandleDisconnect tears a session down: stop its join timer, drop it from
// the session set and, if it had joined, from the presence table, then
// broadcast the updated roster. Idempotent — calling it again for a
// session already removed is a no-op.
func (r *Room) HandleDisconnect(s *Session) {
	r.mu.Lock()
	// Until its first teardown a session either still holds its join timer
	// (not joined) or is tracked (joined); either way Accept counted it.
	counted := s.joinTimer != nil
	if s.joinTimer != nil {
		s.joinTimer.Stop()
		s.joinTimer = nil
	}
	_, wasTracked := r.sessions[s]
	delete(r.sessions, s)
	var recipients []*Session
	var presenceMsg protocol.PresenceBroadcast
	if wasTracked {
		r.presence.delete(s.UserKey())
		presenceMsg = protocol.PresenceBroadcast{
			Type:             protocol.ServerPresence,
			BoardID:          string(r.boardID),
			Users:            r.rosterLocked(),
			PresenceByUserID: r.presence.snapshot(),
		}
		recipients = r.joinedSessionsLocked()
	}
	empty := len(r.sessions) == 0
	metrics.RoomSessions.WithLabelValues(string(r.boardID)).Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if counted || wasTracked {
		metrics.DecConnection()
	}
	if wasTracked {
		for _, rec := range recipients {
			_ = rec.conn.Send(presenceMsg)
		}
	}
	if wasTracked && empty && r.onEmpty != nil {
		r.onEmpty(r.boardID)
	}
}

// rosterLocked builds the users list for joined/presence broadcasts. Must
// be called with mu held.
func (r *Room) rosterLocked() []protocol.RosterEntry {
	roster := make([]protocol.RosterEntry, 0, len(r.sessions))
	for s := range r.sessions {
		roster = append(roster, protocol.RosterEntry{
			UserID:      s.UserKey(),
			DisplayName: s.displayName,
			Role:        s.role,
		})
	}
	return roster
}

// joinedSessionsLocked returns every currently joined session, a snapshot
// safe to range over after mu is released. Must be called with mu held.
func (r *Room) joinedSessionsLocked() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// ensureLoaded loads board state from the store on first use. Concurrent
// callers (e.g. several near-simultaneous joins on a cold room) collapse
// onto the same in-flight load via singleflight rather than each issuing a
// redundant store round trip.
func (r *Room) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	_, err, _ := r.loadGroup.Do("load", func() (interface{}, error) {
		r.mu.Lock()
		if r.loaded {
			r.mu.Unlock()
			return nil, nil
		}
		r.mu.Unlock()
		return nil, r.load(ctx)
	})
	return err
}

func (r *Room) load(ctx context.Context) error {
	info, err := r.store.BoardInfo(ctx, r.boardID)
	if err != nil {
		return fmt.Errorf("load board info: %w", err)
	}

	now := time.Now()
	var st board.State
	var seq types.Seq
	if info == nil {
		st = board.NewEmpty(r.boardID, "", types.BoardTypeAdvanced, now, now)
	} else {
		st = board.NewEmpty(r.boardID, info.Title, info.BoardType, info.CreatedAt, info.UpdatedAt)
		seq = info.SnapshotSeq
	}

	snap, err := r.store.LoadLatestSnapshot(ctx, r.boardID)
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	if snap != nil {
		var loaded board.State
		if err := json.Unmarshal(snap.SnapshotJSON, &loaded); err != nil {
			return fmt.Errorf("unmarshal snapshot: %w", err)
		}
		loaded.SelectedObjectIds = []string{}
		loaded.Meta.ID = r.boardID
		if loaded.Meta.Name == board.DefaultUntitledName && info != nil && info.Title != "" {
			loaded.Meta.Name = info.Title
		}
		st = loaded
		seq = snap.Seq
	}

	r.mu.Lock()
	r.state = st
	r.seq = seq
	r.loaded = true
	r.mu.Unlock()
	return nil
}

// triggerSnapshot persists current state if the cadence in snapshotDueLocked
// says it's time and no other writer is already in flight. It runs the
// actual persist on its own goroutine so the caller's lock is never held
// across the store call.
func (r *Room) triggerSnapshot() {
	r.mu.Lock()
	if r.snapshotInFlight {
		r.mu.Unlock()
		return
	}
	now := time.Now()
	if !r.lastSnapshotAttemptAt.IsZero() && now.Sub(r.lastSnapshotAttemptAt) < SnapshotMinRetryMS {
		r.mu.Unlock()
		return
	}
	r.snapshotInFlight = true
	r.lastSnapshotAttemptAt = now
	snapshot := r.state.Sanitize()
	seq := r.seq
	r.mu.Unlock()

	r.wg.Add(1)
	go r.persistSnapshot(snapshot, seq)
}

func (r *Room) persistSnapshot(snapshot board.State, seq types.Seq) {
	defer r.wg.Done()
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, err := json.Marshal(snapshot)
	if err == nil {
		err = r.store.InsertSnapshot(ctx, r.boardID, seq, data)
	}
	if err == nil {
		err = r.store.UpdateBoardSnapshotSeq(ctx, r.boardID, seq)
	}

	r.mu.Lock()
	r.snapshotInFlight = false
	if err == nil {
		r.opsSinceSnapshot = 0
		r.lastSnapshotPersistAt = time.Now()
	}
	r.mu.Unlock()

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SnapshotDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		logging.Error(ctx, "snapshot persist failed", zap.String("board_id", string(r.boardID)), zap.Error(err))
		return
	}
	logging.Info(ctx, "snapshot persisted", zap.String("board_id", string(r.boardID)), zap.Uint64("seq", uint64(seq)))
}

// snapshotDueLocked reports whether the cadence named by §4.6 has been
// reached. Must be called with mu held.
func (r *Room) snapshotDueLocked(now time.Time) bool {
	if r.opsSinceSnapshot == 0 {
		return false
	}
	if r.opsSinceSnapshot >= SnapshotOpInterval {
		return true
	}
	return now.Sub(r.lastSnapshotPersistAt) >= SnapshotTimeMS
}

// Close shuts the room down: stops the background ticker, closes every
// session with a shutdown error frame, and waits (bounded by ctx) for any
// in-flight snapshot writer to finish.
func (r *Room) Close(ctx context.Context) {
	r.cancel()

	r.mu.Lock()
	sessions := r.joinedSessionsLocked()
	r.mu.Unlock()

	for _, s := range sessions {
		errMsg := protocol.NewError(string(r.boardID), types.ErrServerError, "Server shutting down", true)
		_ = s.conn.Send(errMsg)
		_ = s.conn.Close(1001, "server shutting down")
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn(ctx, "room close timed out waiting for snapshot writer", zap.String("board_id", string(r.boardID)))
	}

	metrics.ActiveRooms.Dec()
}
