package board

import "fmt"

// RejectedError is returned by Apply when an event cannot be applied. The
// room treats this as "op rejected": seq and state are left untouched and
// the submitter gets error{code=forbidden}.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// Apply is the pure, side-effect-free reducer: apply(state, event) -> state'.
// It never mutates its input; callers swap in the returned state only after
// Apply returns without error.
func Apply(state State, ev Event) (State, error) {
	next := state.Clone()
	next.SelectedObjectIds = append([]string{}, state.SelectedObjectIds...)

	switch ev.Type {
	case EventObjectCreated:
		if ev.Payload.Object == nil {
			return state, &RejectedError{Reason: "objectCreated missing object"}
		}
		if next.objectIndex(ev.Payload.Object.ID) != -1 {
			return state, &RejectedError{Reason: "Duplicate object id"}
		}
		next.Objects = append(next.Objects, *ev.Payload.Object)

	case EventObjectUpdated:
		idx := next.objectIndex(ev.Payload.ObjectID)
		if idx == -1 || ev.Payload.Patch == nil {
			// Unknown id is a no-op, not an error.
			next.Meta.UpdatedAt = ev.Time
			return next, nil
		}
		applyPatch(&next.Objects[idx], ev.Payload.Patch)

	case EventObjectDeleted:
		idx := next.objectIndex(ev.Payload.ObjectID)
		if idx == -1 {
			next.Meta.UpdatedAt = ev.Time
			return next, nil
		}
		next.Objects = append(next.Objects[:idx], next.Objects[idx+1:]...)

	case EventSelectionChanged:
		next.SelectedObjectIds = append([]string{}, ev.Payload.SelectedIds...)

	case EventViewportChanged:
		// Ephemeral; no shared-state field to update. Still advances UpdatedAt below.

	default:
		return state, &RejectedError{Reason: fmt.Sprintf("unknown event type %q", ev.Type)}
	}

	next.Meta.UpdatedAt = ev.Time
	return next, nil
}

func applyPatch(obj *Object, p *ObjectPatch) {
	if p.X != nil {
		obj.X = *p.X
	}
	if p.Y != nil {
		obj.Y = *p.Y
	}
	if p.Width != nil {
		obj.Width = *p.Width
	}
	if p.Height != nil {
		obj.Height = *p.Height
	}
	if p.StrokeColor != nil {
		obj.StrokeColor = *p.StrokeColor
	}
	if p.FillColor != nil {
		obj.FillColor = *p.FillColor
	}
	if p.TextColor != nil {
		obj.TextColor = *p.TextColor
	}
	if p.StrokeWidth != nil {
		obj.StrokeWidth = *p.StrokeWidth
	}
	if p.FontSize != nil {
		obj.FontSize = *p.FontSize
	}
	if p.Text != nil {
		obj.Text = *p.Text
	}
	if p.Points != nil {
		obj.Points = p.Points
	}
	if p.Waypoints != nil {
		obj.Waypoints = p.Waypoints
	}
	if p.From != nil {
		obj.From = p.From
	}
	if p.To != nil {
		obj.To = p.To
	}
}
