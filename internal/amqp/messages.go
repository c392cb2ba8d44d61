package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types, carried in the HeaderType header.
const (
	HeaderType    = "type"
	TypeFeeSync   = "fee.sync"
	TypeFeeDelete = "fee.delete"
)

// FeeSyncMessage asks the worker to export the current state of a fee record.
// The worker reloads the record; the message carries no fee data.
type FeeSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// FeeDeleteMessage asks the worker to remove a fee record from the export.
type FeeDeleteMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewFeeSyncMessage(id, version int64) *FeeSyncMessage {
	return &FeeSyncMessage{ID: id, Version: version, Timestamp: time.Now().UTC()}
}

func NewFeeDeleteMessage(id int64) *FeeDeleteMessage {
	return &FeeDeleteMessage{ID: id, Timestamp: time.Now().UTC()}
}

func (m *FeeSyncMessage) ToJSON() ([]byte, error)   { return json.Marshal(m) }
func (m *FeeDeleteMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

// Decode parses body according to its type header. It returns a
// *FeeSyncMessage or a *FeeDeleteMessage.
func Decode(typ string, body []byte) (any, error) {
	switch typ {
	case TypeFeeSync, "":
		var m FeeSyncMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", TypeFeeSync, err)
		}
		return &m, nil
	case TypeFeeDelete:
		var m FeeDeleteMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", TypeFeeDelete, err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("unknown message type %q", typ)
}
