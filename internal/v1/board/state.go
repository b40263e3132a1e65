// Package board defines the authoritative board state, its object model,
// and the pure reducer that applies events to it. Nothing in this package
// touches a network connection or a database; room wires it to both.
package board

import (
	"time"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// ObjectKind enumerates the tagged variants a board Object can be.
type ObjectKind string

const (
	KindFreehand    ObjectKind = "freehand"
	KindLine        ObjectKind = "line"
	KindRectangle   ObjectKind = "rectangle"
	KindEllipse     ObjectKind = "ellipse"
	KindDiamond     ObjectKind = "diamond"
	KindRoundedRect ObjectKind = "roundedRect"
	KindText        ObjectKind = "text"
	KindStickyNote  ObjectKind = "stickyNote"
	KindConnector   ObjectKind = "connector"
)

// AttachmentKind enumerates how a connector endpoint is anchored.
type AttachmentKind string

const (
	AttachPort           AttachmentKind = "port"
	AttachEdgeT          AttachmentKind = "edgeT"
	AttachPerimeterAngle AttachmentKind = "perimeterAngle"
	AttachFallback       AttachmentKind = "fallback"
)

// Point is a single freehand/line/connector waypoint.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Attachment describes where a connector endpoint is anchored. Exactly one
// of the variant-specific fields is meaningful, selected by Kind.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`

	// AttachPort
	PortID string `json:"portId,omitempty"`

	// AttachEdgeT
	Edge string  `json:"edge,omitempty"`
	T    float64 `json:"t,omitempty"`

	// AttachPerimeterAngle
	AngleRad float64 `json:"angleRad,omitempty"`

	// AttachFallback
	Anchor *Point `json:"anchor,omitempty"`
}

// Endpoint is a connector's from/to terminus: a referenced object id plus
// how it attaches to that object. References are not ownership — a
// dangling ObjectID is permitted and never silently healed by the room.
type Endpoint struct {
	ObjectID   string     `json:"objectId,omitempty"`
	Attachment Attachment `json:"attachment"`
}

// Object is the tagged-union element of BoardState.Objects. Fields not
// meaningful for a given Kind are simply left at their zero value; the
// reducer and validator never assume a field's presence implies relevance.
type Object struct {
	ID   string     `json:"id"`
	Kind ObjectKind `json:"type"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	StrokeColor string  `json:"strokeColor,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	TextColor   string  `json:"textColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	Text        string  `json:"text,omitempty"`

	Points    []Point `json:"points,omitempty"`
	Waypoints []Point `json:"waypoints,omitempty"`

	// Connector-only.
	From *Endpoint `json:"from,omitempty"`
	To   *Endpoint `json:"to,omitempty"`
}

// Meta is the durable, non-object part of a board's identity.
type Meta struct {
	ID        types.BoardIDType `json:"id"`
	Name      string            `json:"name"`
	BoardType types.BoardType   `json:"boardType"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// DefaultUntitledName is the placeholder name synthesized for a board that
// has no board-info row yet. Used to detect whether a loaded snapshot's
// name should be overridden by a later-arriving board-info title.
const DefaultUntitledName = "Untitled"

// State is the authoritative board state. The room is its single writer.
// SelectedObjectIds is ephemeral and is never persisted (see Sanitize).
type State struct {
	Meta              Meta     `json:"meta"`
	Objects           []Object `json:"objects"`
	SelectedObjectIds []string `json:"selectedObjectIds"`
}

// objectIndex finds the slice index of an object by id, or -1.
func (s *State) objectIndex(id string) int {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep-enough copy for snapshot persistence: the object
// slice and selection slice are copied so later in-memory mutation can't
// race with an in-flight snapshot write.
func (s *State) Clone() State {
	objs := make([]Object, len(s.Objects))
	copy(objs, s.Objects)
	return State{
		Meta:              s.Meta,
		Objects:           objs,
		SelectedObjectIds: append([]string{}, s.SelectedObjectIds...),
	}
}

// Sanitize returns a copy of the state fit for persistence: ephemeral
// fields (selection, and any future local-history fields) stripped, per
// invariant 7.
func (s *State) Sanitize() State {
	sanitized := s.Clone()
	sanitized.SelectedObjectIds = []string{}
	return sanitized
}

// NewEmpty builds an empty board state from board info defaults.
func NewEmpty(id types.BoardIDType, name string, boardType types.BoardType, createdAt, updatedAt time.Time) State {
	if name == "" {
		name = DefaultUntitledName
	}
	return State{
		Meta: Meta{
			ID:        id,
			Name:      name,
			BoardType: boardType,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
		Objects:           []Object{},
		SelectedObjectIds: []string{},
	}
}
