// Package protocol defines the client<->server wire message shapes of
// spec.md §6 and the Validator (§4.2) that parses and structurally checks
// them before a room ever sees one.
package protocol

import (
	"encoding/json"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/board"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// ClientMessageType tags an inbound frame.
type ClientMessageType string

const (
	ClientJoin     ClientMessageType = "join"
	ClientOp       ClientMessageType = "op"
	ClientPresence ClientMessageType = "presence"
	ClientPing     ClientMessageType = "ping"
)

// Envelope is parsed first to discover Type before the full payload is
// unmarshaled into its typed shape.
type Envelope struct {
	Type ClientMessageType `json:"type"`
}

// AuthKind selects which of the two §4.3 paths a join carries.
type AuthKind string

const (
	AuthOwner  AuthKind = "owner"
	AuthInvite AuthKind = "invite"
)

// JoinAuth is the join message's auth sub-object.
type JoinAuth struct {
	Kind        AuthKind `json:"kind" validate:"required,oneof=owner invite"`
	SupabaseJWT string   `json:"supabaseJwt,omitempty" validate:"required_if=Kind owner,max=4096"`
	InviteToken string   `json:"inviteToken,omitempty" validate:"required_if=Kind invite,max=4096"`
}

// JoinClientInfo carries optional guest identity/display hints.
type JoinClientInfo struct {
	GuestID     string `json:"guestId,omitempty" validate:"max=128"`
	DisplayName string `json:"displayName,omitempty" validate:"max=64"`
	Color       string `json:"color,omitempty" validate:"max=32"`
}

// JoinMessage is the client->server `join` message.
type JoinMessage struct {
	Type           ClientMessageType `json:"type" validate:"required,eq=join"`
	BoardID        string            `json:"boardId" validate:"required,max=128"`
	Auth           JoinAuth          `json:"auth" validate:"required"`
	ClientKnownSeq *uint64           `json:"clientKnownSeq,omitempty"`
	Client         *JoinClientInfo   `json:"client,omitempty"`
}

// OpMessage is the client->server `op` message.
type OpMessage struct {
	Type       ClientMessageType `json:"type" validate:"required,eq=op"`
	BoardID    string            `json:"boardId" validate:"required,max=128"`
	ClientOpID string            `json:"clientOpId" validate:"required,max=128"`
	BaseSeq    int64             `json:"baseSeq" validate:"gte=0"`
	Op         board.Event       `json:"op" validate:"required"`
}

// PresencePayload is the ephemeral state carried by a `presence` message.
type PresencePayload struct {
	Cursor       *board.Point    `json:"cursor,omitempty"`
	SelectionIds []string        `json:"selectionIds,omitempty" validate:"max=200"`
	Viewport     *board.Viewport `json:"viewport,omitempty"`
	IsTyping     *bool           `json:"isTyping,omitempty"`
}

// PresenceMessage is the client->server `presence` message.
type PresenceMessage struct {
	Type     ClientMessageType `json:"type" validate:"required,eq=presence"`
	BoardID  string            `json:"boardId" validate:"required,max=128"`
	Presence PresencePayload   `json:"presence" validate:"required"`
}

// PingMessage is the client->server `ping` message.
type PingMessage struct {
	Type ClientMessageType `json:"type" validate:"required,eq=ping"`
	T    int64             `json:"t"`
}

// ServerMessageType tags an outbound frame.
type ServerMessageType string

const (
	ServerHello    ServerMessageType = "hello"
	ServerJoined   ServerMessageType = "joined"
	ServerOp       ServerMessageType = "op"
	ServerPresence ServerMessageType = "presence"
	ServerError    ServerMessageType = "error"
	ServerPong     ServerMessageType = "pong"
)

// HelloMessage is sent immediately on accept, before any join.
type HelloMessage struct {
	Type            ServerMessageType `json:"type"`
	MaxMessageBytes int               `json:"maxMessageBytes"`
}

func NewHello() HelloMessage {
	return HelloMessage{Type: ServerHello, MaxMessageBytes: MaxMessageBytes}
}

// RosterEntry describes one joined user in `joined.users` / `presence.users`.
type RosterEntry struct {
	UserID      string        `json:"userId"`
	DisplayName string        `json:"displayName"`
	Role        types.RoleType `json:"role"`
}

// JoinedMessage is the server's response to a successful join.
type JoinedMessage struct {
	Type        ServerMessageType `json:"type"`
	BoardID     string            `json:"boardId"`
	Role        types.RoleType    `json:"role"`
	Seq         types.Seq         `json:"seq"`
	Snapshot    *board.State      `json:"snapshot,omitempty"`
	SnapshotSeq *types.Seq        `json:"snapshotSeq,omitempty"`
	Users       []RosterEntry     `json:"users,omitempty"`
}

// OpBroadcast is the server's `op` message, fanned out to every joined session.
type OpBroadcast struct {
	Type       ServerMessageType `json:"type"`
	BoardID    string            `json:"boardId"`
	Seq        types.Seq         `json:"seq"`
	Op         board.Event       `json:"op"`
	AuthorID   string            `json:"authorId"`
	ClientOpID string            `json:"clientOpId,omitempty"`
}

// PresenceBroadcast is the server's `presence` message.
type PresenceBroadcast struct {
	Type             ServerMessageType          `json:"type"`
	BoardID          string                     `json:"boardId"`
	Users            []RosterEntry              `json:"users"`
	PresenceByUserID map[string]PresencePayload `json:"presenceByUserId,omitempty"`
}

// ErrorMessage is the server's non-fatal or close-preceding error report.
type ErrorMessage struct {
	Type    ServerMessageType `json:"type"`
	BoardID string            `json:"boardId,omitempty"`
	Code    types.ErrorCode   `json:"code"`
	Message string            `json:"message"`
	Fatal   bool              `json:"fatal,omitempty"`
}

func NewError(boardID string, code types.ErrorCode, message string, fatal bool) ErrorMessage {
	return ErrorMessage{Type: ServerError, BoardID: boardID, Code: code, Message: message, Fatal: fatal}
}

// PongMessage echoes a ping back to its submitter only.
type PongMessage struct {
	Type ServerMessageType `json:"type"`
	T    int64             `json:"t"`
}

func NewPong(t int64) PongMessage {
	return PongMessage{Type: ServerPong, T: t}
}

// Marshal is a small convenience wrapper kept close to the message types so
// the transport layer never has to reach for encoding/json directly.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
