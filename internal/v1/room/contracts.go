package room

import (
	"context"
	"encoding/json"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/store"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// SnapshotStore is the narrow persistence contract a Room needs: board
// metadata plus the append-only snapshot log (§4.4). store.PostgresStore
// satisfies this directly.
type SnapshotStore interface {
	BoardInfo(ctx context.Context, boardID types.BoardIDType) (*types.BoardInfo, error)
	LoadLatestSnapshot(ctx context.Context, boardID types.BoardIDType) (*store.Snapshot, error)
	InsertSnapshot(ctx context.Context, boardID types.BoardIDType, seq types.Seq, snapshotJSON json.RawMessage) error
	UpdateBoardSnapshotSeq(ctx context.Context, boardID types.BoardIDType, seq types.Seq) error
}

// AuthResolver is the narrow auth contract a Room needs for the join
// procedure (§4.3). auth.Resolver satisfies this directly.
type AuthResolver interface {
	ResolveOwner(ctx context.Context, boardID types.BoardIDType, supabaseJwt string) (types.UserIDType, error)
	ResolveInvite(ctx context.Context, boardID types.BoardIDType, rawToken string) (types.RoleType, error)
}

// ChannelHandle is what a Room needs from a connected session's transport:
// send one message, or close the channel with a websocket close code. Room
// never imports the transport package directly — transport implements this
// instead — so the two packages don't form an import cycle.
type ChannelHandle interface {
	Send(v interface{}) error
	Close(code int, reason string) error
}
