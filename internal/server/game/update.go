package game

import (
	"fmt"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

var knownEvents = map[string]bool{
	models.EventProblem:  true,
	models.EventMinigame: true,
	models.EventLocation: true,
	models.EventNotebook: true,
	models.EventAccess:   true,
	models.EventNPC:      true,
}

// ValidateEvent rejects events whose type is outside the accepted set.
func ValidateEvent(ev models.UpdateEvent) error {
	if !knownEvents[ev.Type] {
		return fmt.Errorf("%w: unknown event type %q", common.ErrValidation, ev.Type)
	}
	return nil
}

// HasTransform reports whether events of this type change the state.
// notebook, access and npc events are accepted but currently do nothing.
func HasTransform(eventType string) bool {
	switch eventType {
	case models.EventLocation, models.EventProblem, models.EventMinigame:
		return true
	default:
		return false
	}
}

// CompletionKey is the notebook key holding the completed ids of eventType.
func CompletionKey(eventType string) string {
	return "completed_" + eventType + "s"
}

// Apply returns the state that results from applying ev to state. The input
// is left untouched. Applying the same problem/minigame event twice is the
// same as applying it once.
func Apply(state *models.GameState, ev models.UpdateEvent) (*models.GameState, error) {
	if err := ValidateEvent(ev); err != nil {
		return nil, err
	}

	next := state.Clone()

	switch ev.Type {
	case models.EventLocation:
		msg, ok := ev.Msg.(map[string]any)
		if !ok {
			return next, nil
		}
		if err := applyLocation(&next.Location, msg); err != nil {
			return nil, err
		}

	case models.EventProblem, models.EventMinigame:
		if ev.ID == nil || *ev.ID == "" {
			return next, nil
		}
		if err := appendCompletion(next.Notebook, CompletionKey(ev.Type), *ev.ID); err != nil {
			return nil, err
		}
	}

	return next, nil
}

func applyLocation(loc *models.Location, msg map[string]any) error {
	out := *loc

	if v, ok := msg["room"]; ok {
		room, isString := v.(string)
		if !isString {
			return fmt.Errorf("%w: location.room must be a string, got %T", common.ErrValidation, v)
		}
		out.Room = room
	}

	if v, ok := msg["x"]; ok {
		x, err := coerceInt(v)
		if err != nil {
			return fmt.Errorf("%w: location.x: %v", common.ErrValidation, err)
		}
		out.X = x
	}

	if v, ok := msg["y"]; ok {
		y, err := coerceInt(v)
		if err != nil {
			return fmt.Errorf("%w: location.y: %v", common.ErrValidation, err)
		}
		out.Y = y
	}

	*loc = out
	return nil
}

// appendCompletion adds id to notebook[key] unless it is already there,
// keeping first-seen order.
func appendCompletion(notebook map[string]any, key, id string) error {
	var list []any

	switch existing := notebook[key].(type) {
	case nil:
		list = []any{}
	case []any:
		list = existing
	case []string:
		list = make([]any, 0, len(existing))
		for _, s := range existing {
			list = append(list, s)
		}
	default:
		return fmt.Errorf("%w: notebook.%s is %T, not a list", common.ErrCorruptState, key, existing)
	}

	for _, e := range list {
		if s, ok := e.(string); ok && s == id {
			notebook[key] = list
			return nil
		}
	}

	notebook[key] = append(list, id)
	return nil
}
