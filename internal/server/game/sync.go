package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

// Serialize renders state in its canonical JSON form:
// {"location":{"room","x","y"},"notebook":{},"access":{},"npc":[{"id","state"}]}.
func Serialize(state *models.GameState) ([]byte, error) {
	return json.Marshal(normalize(state.Clone()))
}

// Deserialize parses a stored game state. The stored value may be a JSON
// object or a JSON string that itself contains the object. Missing parts are
// filled with defaults. Anything else fails with common.ErrCorruptState.
func Deserialize(raw []byte) (*models.GameState, error) {
	state, err := decode(raw, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptState, err)
	}
	return state, nil
}

// DecodeSave parses a state sent by the client for a full save. Unlike
// Deserialize it only accepts an object and reports problems as
// common.ErrValidation.
func DecodeSave(raw []byte) (*models.GameState, error) {
	state, err := decode(raw, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return state, nil
}

type wireLocation struct {
	Room *string `json:"room"`
	X    any     `json:"x"`
	Y    any     `json:"y"`
}

type wireState struct {
	Location *wireLocation  `json:"location"`
	Notebook map[string]any `json:"notebook"`
	Access   map[string]any `json:"access"`
	NPC      []models.NPC   `json:"npc"`
}

func decode(raw []byte, allowEncodedString bool) (*models.GameState, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty document")
	}

	if raw[0] == '"' {
		if !allowEncodedString {
			return nil, errors.New("expected a JSON object")
		}
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		return decode([]byte(inner), false)
	}

	if raw[0] != '{' {
		return nil, errors.New("expected a JSON object")
	}

	// json.Number keeps integers above 2^53 exact inside notebook, access
	// and npc state.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var w wireState
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON object")
	}

	state := &models.GameState{
		Location: models.Location{Room: models.DefaultRoom},
		Notebook: w.Notebook,
		Access:   w.Access,
		NPC:      w.NPC,
	}

	if w.Location != nil {
		if w.Location.Room != nil {
			state.Location.Room = *w.Location.Room
		}
		if w.Location.X != nil {
			x, err := coerceInt(w.Location.X)
			if err != nil {
				return nil, fmt.Errorf("location.x: %v", err)
			}
			state.Location.X = x
		}
		if w.Location.Y != nil {
			y, err := coerceInt(w.Location.Y)
			if err != nil {
				return nil, fmt.Errorf("location.y: %v", err)
			}
			state.Location.Y = y
		}
	}

	return normalize(state), nil
}

// normalize replaces nil containers with empty ones so the JSON form never
// carries nulls.
func normalize(s *models.GameState) *models.GameState {
	if s.Notebook == nil {
		s.Notebook = map[string]any{}
	}
	if s.Access == nil {
		s.Access = map[string]any{}
	}
	if s.NPC == nil {
		s.NPC = []models.NPC{}
	}
	for i := range s.NPC {
		if s.NPC[i].State == nil {
			s.NPC[i].State = map[string]any{}
		}
	}
	return s
}
