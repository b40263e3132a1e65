package router

import (
	"context"
	"encoding/json"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/auth"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/store"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

type fakeStore struct{}

func (f *fakeStore) BoardInfo(ctx context.Context, boardID types.BoardIDType) (*types.BoardInfo, error) {
	return &types.BoardInfo{ID: boardID, BoardType: types.BoardTypeAdvanced}, nil
}

func (f *fakeStore) LoadLatestSnapshot(ctx context.Context, boardID types.BoardIDType) (*store.Snapshot, error) {
	return nil, nil
}

func (f *fakeStore) InsertSnapshot(ctx context.Context, boardID types.BoardIDType, seq types.Seq, snapshotJSON json.RawMessage) error {
	return nil
}

func (f *fakeStore) UpdateBoardSnapshotSeq(ctx context.Context, boardID types.BoardIDType, seq types.Seq) error {
	return nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveOwner(ctx context.Context, boardID types.BoardIDType, supabaseJwt string) (types.UserIDType, error) {
	return "", auth.ErrInvalidOwnerToken
}

func (fakeResolver) ResolveInvite(ctx context.Context, boardID types.BoardIDType, rawToken string) (types.RoleType, error) {
	return "", auth.ErrInvalidInviteToken
}
