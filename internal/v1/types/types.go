// Package types defines shared identifiers and cross-package interfaces for
// the board server. Keeping these here lets room, transport, auth and store
// depend on narrow contracts instead of on each other directly.
package types

import "time"

// BoardIDType identifies a board. Opaque, bounded length (see protocol limits).
type BoardIDType string

// UserIDType identifies an authenticated user; only the owner (JWT) join
// path sets one.
type UserIDType string

// GuestIDType identifies an unauthenticated participant: supplied by the
// client on join, or generated by the room for an invite session that
// supplies none.
type GuestIDType string

// ClientOpIDType is a client-chosen id used for idempotent op resubmission.
type ClientOpIDType string

// Seq is the room's monotonically increasing per-board operation counter.
type Seq uint64

// RoleType is the permission level held by a joined session.
type RoleType string

const (
	RoleOwner  RoleType = "owner"
	RoleEditor RoleType = "editor"
	RoleViewer RoleType = "viewer"
)

// CanMutate reports whether a role is allowed to submit ops.
func (r RoleType) CanMutate() bool {
	return r == RoleOwner || r == RoleEditor
}

// BoardType enumerates the supported canvas kinds.
type BoardType string

const (
	BoardTypeAdvanced BoardType = "advanced"
	BoardTypeFreehand BoardType = "freehand"
	BoardTypeMindmap  BoardType = "mindmap"
)

// ErrorCode is the fixed vocabulary of the wire protocol's error.code field.
type ErrorCode string

const (
	ErrBadRequest      ErrorCode = "bad_request"
	ErrUnauthorized    ErrorCode = "unauthorized"
	ErrForbidden       ErrorCode = "forbidden"
	ErrNotFound        ErrorCode = "not_found"
	ErrRateLimited     ErrorCode = "rate_limited"
	ErrPayloadTooLarge ErrorCode = "payload_too_large"
	ErrServerError     ErrorCode = "server_error"
)

// BoardInfo is the durable board row the SnapshotStore hands back,
// independent of any persisted snapshot body.
type BoardInfo struct {
	ID          BoardIDType
	OwnerUserID UserIDType
	Title       string
	BoardType   BoardType
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SnapshotSeq Seq
}

// InviteInfo is a resolved board_invites row.
type InviteInfo struct {
	BoardID   BoardIDType
	TokenHash string
	Role      RoleType
	ExpiresAt *time.Time
	RevokedAt *time.Time
}

// Expired reports whether the invite is past its expiry, if it has one.
func (i InviteInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Revoked reports whether the invite has been revoked.
func (i InviteInfo) Revoked() bool {
	return i.RevokedAt != nil
}
