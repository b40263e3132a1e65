package auth

import "errors"

// Fixed error vocabulary surfaced by Resolve, per the join procedure's auth step.
var (
	ErrInvalidOwnerToken  = errors.New("invalid owner token")
	ErrNotBoardOwner      = errors.New("not board owner")
	ErrInvalidInviteToken = errors.New("invalid invite token")
	ErrInviteRevoked      = errors.New("invite revoked")
	ErrInviteExpired      = errors.New("invite expired")
	ErrBoardNotFound      = errors.New("board not found")
)
