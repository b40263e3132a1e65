package board

import "time"

// EventType tags the payload variant carried by an Event.
type EventType string

const (
	EventObjectCreated    EventType = "objectCreated"
	EventObjectUpdated    EventType = "objectUpdated"
	EventObjectDeleted    EventType = "objectDeleted"
	EventSelectionChanged EventType = "selectionChanged"
	EventViewportChanged  EventType = "viewportChanged"
)

// Viewport is the ephemeral pan/zoom state broadcast with viewportChanged.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// ObjectPatch carries the field-by-field last-writer-wins update applied
// by objectUpdated. A nil pointer field means "leave unchanged"; this
// mirrors the source's dynamic/untyped patch object while staying typed.
type ObjectPatch struct {
	X           *float64  `json:"x,omitempty"`
	Y           *float64  `json:"y,omitempty"`
	Width       *float64  `json:"width,omitempty"`
	Height      *float64  `json:"height,omitempty"`
	StrokeColor *string   `json:"strokeColor,omitempty"`
	FillColor   *string   `json:"fillColor,omitempty"`
	TextColor   *string   `json:"textColor,omitempty"`
	StrokeWidth *float64  `json:"strokeWidth,omitempty"`
	FontSize    *float64  `json:"fontSize,omitempty"`
	Text        *string   `json:"text,omitempty"`
	Points      []Point   `json:"points,omitempty"`
	Waypoints   []Point   `json:"waypoints,omitempty"`
	From        *Endpoint `json:"from,omitempty"`
	To          *Endpoint `json:"to,omitempty"`
}

// Event is the tagged variant the reducer applies. The validator rejects an
// op message whose event BoardID is non-empty and differs from the
// message's own boardId; neither the validator nor the room compares
// BoardID with the owning room's board id.
type Event struct {
	ID      string       `json:"id"`
	BoardID string       `json:"boardId"`
	Type    EventType    `json:"type"`
	Time    time.Time    `json:"timestamp"`
	Payload EventPayload `json:"payload"`
}

// EventPayload unions the per-type payload shapes. Event.Type selects the
// fields in use: Object (objectCreated), ObjectID and Patch
// (objectUpdated), ObjectID (objectDeleted), SelectedIds
// (selectionChanged), Viewport (viewportChanged). The validator checks the
// fields the type needs; fields the type does not use are not checked and
// are ignored.
type EventPayload struct {
	Object      *Object      `json:"object,omitempty"`
	ObjectID    string       `json:"objectId,omitempty"`
	Patch       *ObjectPatch `json:"patch,omitempty"`
	SelectedIds []string     `json:"selectedIds,omitempty"`
	Viewport    *Viewport    `json:"viewport,omitempty"`
}
