package models

// Update event types accepted by the game API.
const (
	EventProblem  = "problem"
	EventMinigame = "minigame"
	EventLocation = "location"
	EventNotebook = "notebook"
	EventAccess   = "access"
	EventNPC      = "npc"
)

// UpdateEvent is a single typed mutation of a GameState. It is never stored.
type UpdateEvent struct {
	Type string  `json:"type"`
	ID   *string `json:"id,omitempty"`
	Msg  any     `json:"msg,omitempty"`
}
