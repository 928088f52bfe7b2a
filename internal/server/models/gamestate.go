// Package models defines server-side data models persisted by the
// repositories and exchanged with the game client.
package models

// Location is the player's position on the map.
type Location struct {
	Room string `json:"room"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// NPC carries the per-NPC progress blob.
type NPC struct {
	ID    string         `json:"id"`
	State map[string]any `json:"state"`
}

// GameState is the whole progress blob of one user.
type GameState struct {
	Location Location       `json:"location"`
	Notebook map[string]any `json:"notebook"`
	Access   map[string]any `json:"access"`
	NPC      []NPC          `json:"npc"`
}

// DefaultRoom is where a new game starts.
const DefaultRoom = "Start"

// NewGameState returns the state of a fresh game with one NPC per seed id.
func NewGameState(seedNPCs []string) *GameState {
	npcs := make([]NPC, 0, len(seedNPCs))
	for _, id := range seedNPCs {
		npcs = append(npcs, NPC{ID: id, State: map[string]any{}})
	}
	return &GameState{
		Location: Location{Room: DefaultRoom},
		Notebook: map[string]any{},
		Access:   map[string]any{},
		NPC:      npcs,
	}
}

// Clone returns a deep copy so callers can mutate it freely.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		Location: s.Location,
		Notebook: cloneMap(s.Notebook),
		Access:   cloneMap(s.Access),
		NPC:      make([]NPC, 0, len(s.NPC)),
	}
	for _, n := range s.NPC {
		out.NPC = append(out.NPC, NPC{ID: n.ID, State: cloneMap(n.State)})
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
