package protocol

import (
	"encoding/json"
	"fmt"

	playground "github.com/go-playground/validator/v10"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/board"
)

// Validator parses a text frame as JSON and structurally validates it
// against the client<->server schema (§4.2), ahead of the room.
type Validator struct {
	v *playground.Validate
}

func NewValidator() *Validator {
	return &Validator{v: playground.New()}
}

// ParsedMessage is the typed result of a successful Parse, with exactly one
// of its fields populated, selected by Type.
type ParsedMessage struct {
	Type     ClientMessageType
	Join     *JoinMessage
	Op       *OpMessage
	Presence *PresenceMessage
	Ping     *PingMessage
}

// Parse enforces MaxMessageBytes, parses the frame as JSON, dispatches on
// its `type` tag, and structurally validates the typed result. It returns a
// short, client-safe error string on any failure — never the underlying
// validator/json error detail.
func (val *Validator) Parse(raw []byte) (*ParsedMessage, string) {
	if len(raw) > MaxMessageBytes {
		return nil, "Message too large"
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "Malformed JSON"
	}

	switch env.Type {
	case ClientJoin:
		var m JoinMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, "Malformed join message"
		}
		if err := val.v.Struct(&m); err != nil {
			return nil, "Invalid join message"
		}
		return &ParsedMessage{Type: ClientJoin, Join: &m}, ""

	case ClientOp:
		var m OpMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, "Malformed op message"
		}
		if err := val.v.Struct(&m); err != nil {
			return nil, "Invalid op message"
		}
		if msg, ok := validateEventShape(m.Op); !ok {
			return nil, msg
		}
		if m.Op.BoardID != "" && m.Op.BoardID != m.BoardID {
			return nil, "boardId mismatch"
		}
		return &ParsedMessage{Type: ClientOp, Op: &m}, ""

	case ClientPresence:
		var m PresenceMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, "Malformed presence message"
		}
		if err := val.v.Struct(&m); err != nil {
			return nil, "Invalid presence message"
		}
		return &ParsedMessage{Type: ClientPresence, Presence: &m}, ""

	case ClientPing:
		var m PingMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, "Malformed ping message"
		}
		return &ParsedMessage{Type: ClientPing, Ping: &m}, ""

	default:
		return nil, fmt.Sprintf("Unknown message type %q", env.Type)
	}
}

// validateEventShape enforces the range caps §4.2 names that validator
// struct tags can't express cleanly on a tagged-union payload: strokeWidth,
// fontSize, zoom, points/text/selection length caps.
func validateEventShape(ev board.Event) (string, bool) {
	switch ev.Type {
	case board.EventObjectCreated:
		if ev.Payload.Object == nil {
			return "objectCreated missing object", false
		}
		return validateObjectShape(*ev.Payload.Object)

	case board.EventObjectUpdated:
		if ev.Payload.Patch == nil {
			return "", true
		}
		p := ev.Payload.Patch
		if p.StrokeWidth != nil && (*p.StrokeWidth < MinStrokeWidth || *p.StrokeWidth > MaxStrokeWidth) {
			return "strokeWidth out of range", false
		}
		if p.FontSize != nil && (*p.FontSize < MinFontSize || *p.FontSize > MaxFontSize) {
			return "fontSize out of range", false
		}
		if p.Text != nil && len(*p.Text) > MaxTextChars {
			return "text too long", false
		}
		if len(p.Points) > MaxStrokePoints || len(p.Waypoints) > MaxStrokePoints {
			return "too many points", false
		}
		return "", true

	case board.EventObjectDeleted:
		return "", true

	case board.EventSelectionChanged:
		if len(ev.Payload.SelectedIds) > MaxSelectionIDs {
			return "too many selected ids", false
		}
		return "", true

	case board.EventViewportChanged:
		if ev.Payload.Viewport == nil {
			return "viewportChanged missing viewport", false
		}
		z := ev.Payload.Viewport.Zoom
		if z < MinZoom || z > MaxZoom {
			return "zoom out of range", false
		}
		return "", true

	default:
		return fmt.Sprintf("unknown event type %q", ev.Type), false
	}
}

func validateObjectShape(obj board.Object) (string, bool) {
	if obj.StrokeWidth < MinStrokeWidth || obj.StrokeWidth > MaxStrokeWidth {
		return "strokeWidth out of range", false
	}
	if obj.FontSize != 0 && (obj.FontSize < MinFontSize || obj.FontSize > MaxFontSize) {
		return "fontSize out of range", false
	}
	if len(obj.Text) > MaxTextChars {
		return "text too long", false
	}
	if len(obj.Points) > MaxStrokePoints || len(obj.Waypoints) > MaxStrokePoints {
		return "too many points", false
	}
	if len(obj.StrokeColor) > MaxColorChars || len(obj.FillColor) > MaxColorChars || len(obj.TextColor) > MaxColorChars {
		return "color too long", false
	}
	return "", true
}
