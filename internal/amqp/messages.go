package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces that a new snapshot revision was persisted.
// It carries no state; consumers read the snapshot from the blob store.
type SnapshotSavedMessage struct {
	Key       string    `json:"key"`
	Revision  uint64    `json:"revision"`
	Cards     int       `json:"cards"`
	Entries   int       `json:"entries"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotSavedMessage creates a message stamped with the current time.
func NewSnapshotSavedMessage(key string, revision uint64, cards, entries int) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		Key:       key,
		Revision:  revision,
		Cards:     cards,
		Entries:   entries,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON creates a message from JSON bytes
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
