// Package store implements §4.4's SnapshotStore against Postgres (the
// Supabase-hosted database named by spec.md §6), grounded on the pack's
// pgx-based metadata store pattern but trimmed to the board schema.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// PostgresStore implements auth.BoardLookup and the room's SnapshotStore
// contract against the boards/board_invites/board_snapshots schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool for dsn and verifies
// connectivity with a ping before returning.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logging.Info(ctx, "postgres store connected")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping is used by the readiness handler.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// BoardInfo implements auth.BoardLookup.
func (s *PostgresStore) BoardInfo(ctx context.Context, boardID types.BoardIDType) (*types.BoardInfo, error) {
	const query = `
		SELECT id, owner_user_id, title, board_type, created_at, updated_at, snapshot_seq
		FROM boards
		WHERE id = $1
	`

	var info types.BoardInfo
	err := s.pool.QueryRow(ctx, query, string(boardID)).Scan(
		&info.ID,
		&info.OwnerUserID,
		&info.Title,
		&info.BoardType,
		&info.CreatedAt,
		&info.UpdatedAt,
		&info.SnapshotSeq,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query board info: %w", err)
	}
	return &info, nil
}

// InviteByTokenHash implements auth.BoardLookup.
func (s *PostgresStore) InviteByTokenHash(ctx context.Context, boardID types.BoardIDType, tokenHash string) (*types.InviteInfo, error) {
	const query = `
		SELECT board_id, token_hash, role, expires_at, revoked_at
		FROM board_invites
		WHERE board_id = $1 AND token_hash = $2
	`

	var invite types.InviteInfo
	err := s.pool.QueryRow(ctx, query, string(boardID), tokenHash).Scan(
		&invite.BoardID,
		&invite.TokenHash,
		&invite.Role,
		&invite.ExpiresAt,
		&invite.RevokedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query invite: %w", err)
	}
	return &invite, nil
}

// Snapshot is the row shape loadLatestSnapshot hands back.
type Snapshot struct {
	Seq          types.Seq
	SnapshotJSON json.RawMessage
}

// LoadLatestSnapshot returns the highest-seq persisted snapshot for boardID,
// or nil if none exists yet.
func (s *PostgresStore) LoadLatestSnapshot(ctx context.Context, boardID types.BoardIDType) (*Snapshot, error) {
	const query = `
		SELECT seq, snapshot_json
		FROM board_snapshots
		WHERE board_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	var snap Snapshot
	err := s.pool.QueryRow(ctx, query, string(boardID)).Scan(&snap.Seq, &snap.SnapshotJSON)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return &snap, nil
}

// InsertSnapshot appends a new snapshot row. Snapshots are append-only and
// ordered by seq; the room never updates or deletes an existing row.
func (s *PostgresStore) InsertSnapshot(ctx context.Context, boardID types.BoardIDType, seq types.Seq, snapshotJSON json.RawMessage) error {
	const query = `
		INSERT INTO board_snapshots (board_id, seq, snapshot_json)
		VALUES ($1, $2, $3)
	`
	_, err := s.pool.Exec(ctx, query, string(boardID), seq, snapshotJSON)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// UpdateBoardSnapshotSeq advances boards.snapshot_seq so a later
// loadBoardInfo reflects the most recently persisted snapshot even before
// loadLatestSnapshot is consulted.
func (s *PostgresStore) UpdateBoardSnapshotSeq(ctx context.Context, boardID types.BoardIDType, seq types.Seq) error {
	const query = `UPDATE boards SET snapshot_seq = $2, updated_at = now() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, string(boardID), seq)
	if err != nil {
		return fmt.Errorf("update board snapshot seq: %w", err)
	}
	return nil
}
