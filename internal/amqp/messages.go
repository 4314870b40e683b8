package amqp

import (
	"encoding/json"
	"time"
)

// ConversionSyncMessage asks the worker to export one conversion to the
// spreadsheet. Only the ID and version travel on the wire; the worker loads
// the full row from the database.
type ConversionSyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewConversionSyncMessage(id string, version int64) *ConversionSyncMessage {
	return &ConversionSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *ConversionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ConversionSyncMessageFromJSON(data []byte) (*ConversionSyncMessage, error) {
	var msg ConversionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
