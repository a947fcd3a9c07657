package amqp

import (
	"encoding/json"
	"time"
)

// SaleChangedMessage announces that the sales collection was mutated by some
// writer. Consumers treat it as an opaque trigger and reload everything; the
// payload exists only for logging.
type SaleChangedMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleSyncMessage asks the mirror worker to copy one sale to the remote
// ledger. Only the ID travels; the worker fetches the record from storage.
type SaleSyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSaleChangedMessage(id, action string) *SaleChangedMessage {
	return &SaleChangedMessage{ID: id, Action: action, Timestamp: time.Now()}
}

func NewSaleSyncMessage(id string) *SaleSyncMessage {
	return &SaleSyncMessage{ID: id, Timestamp: time.Now()}
}

func (m *SaleChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SaleChangedMessageFromJSON(data []byte) (*SaleChangedMessage, error) {
	var msg SaleChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *SaleSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SaleSyncMessageFromJSON(data []byte) (*SaleSyncMessage, error) {
	var msg SaleSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
