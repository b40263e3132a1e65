package room

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/auth"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/store"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// fakeConn is an in-memory ChannelHandle recording every sent message and
// whether/with-what it was closed.
type fakeConn struct {
	mu     sync.Mutex
	sent   []interface{}
	closed bool
	code   int
	reason string
}

func (f *fakeConn) Send(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeConn) Close(code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.code = code
	f.reason = reason
	return nil
}

func (f *fakeConn) messages() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interface{}, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeStore is an in-memory SnapshotStore. If block is non-nil,
// InsertSnapshot waits for it to be closed before proceeding, letting tests
// pin a persist goroutine in flight.
type fakeStore struct {
	mu        sync.Mutex
	boardInfo *types.BoardInfo
	snapshot  *store.Snapshot
	inserted  []store.Snapshot
	updatedTo types.Seq
	block     chan struct{}
}

func (f *fakeStore) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func (f *fakeStore) BoardInfo(ctx context.Context, boardID types.BoardIDType) (*types.BoardInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.boardInfo, nil
}

func (f *fakeStore) LoadLatestSnapshot(ctx context.Context, boardID types.BoardIDType) (*store.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, nil
}

func (f *fakeStore) InsertSnapshot(ctx context.Context, boardID types.BoardIDType, seq types.Seq, snapshotJSON json.RawMessage) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, store.Snapshot{Seq: seq, SnapshotJSON: snapshotJSON})
	return nil
}

func (f *fakeStore) UpdateBoardSnapshotSeq(ctx context.Context, boardID types.BoardIDType, seq types.Seq) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedTo = seq
	return nil
}

// fakeResolver is an in-memory AuthResolver: owners/invites are whatever the
// test seeds in its maps.
type fakeResolver struct {
	owners  map[string]types.UserIDType // jwt -> userID
	invites map[string]types.RoleType   // token -> role
	err     error
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{owners: map[string]types.UserIDType{}, invites: map[string]types.RoleType{}}
}

func (f *fakeResolver) ResolveOwner(ctx context.Context, boardID types.BoardIDType, supabaseJwt string) (types.UserIDType, error) {
	if f.err != nil {
		return "", f.err
	}
	uid, ok := f.owners[supabaseJwt]
	if !ok {
		return "", auth.ErrInvalidOwnerToken
	}
	return uid, nil
}

func (f *fakeResolver) ResolveInvite(ctx context.Context, boardID types.BoardIDType, rawToken string) (types.RoleType, error) {
	if f.err != nil {
		return "", f.err
	}
	role, ok := f.invites[rawToken]
	if !ok {
		return "", auth.ErrInvalidInviteToken
	}
	return role, nil
}
