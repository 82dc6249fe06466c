package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"cctracker/internal/core"
)

// ErrInvalidSnapshot marks stored data that cannot be used as a snapshot.
var ErrInvalidSnapshot = errors.New("invalid stored snapshot")

// Encode serializes a snapshot in its persisted JSON form.
func Encode(s core.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot. The value must be a JSON object whose
// cards and entries are lists; anything else is ErrInvalidSnapshot. Missing
// theme, view or draft fall back to defaults and references are repaired.
func Decode(data []byte, today string) (core.Snapshot, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return core.Snapshot{}, nil, fmt.Errorf("%w: not a JSON object", ErrInvalidSnapshot)
	}
	for _, field := range []string{"cards", "entries"} {
		v, ok := raw[field]
		if !ok || !isJSONArray(v) {
			return core.Snapshot{}, nil, fmt.Errorf("%w: %s is not a list", ErrInvalidSnapshot, field)
		}
	}

	s := core.NewSnapshot(today)
	if err := json.Unmarshal(data, &s); err != nil {
		return core.Snapshot{}, nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if _, ok := raw["draft"]; !ok {
		s.Draft = core.NewDraft(today)
	}
	fixes := s.Repair(today)
	return s, fixes, nil
}

func isJSONArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}
