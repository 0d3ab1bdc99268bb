package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by a sync message.
const (
	OpSaved   = "saved"
	OpDeleted = "deleted"
)

// TransactionSyncMessage is a lightweight notification that a transaction
// changed. It carries only the ID and operation; the worker fetches the full
// record from the database.
type TransactionSyncMessage struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id int64, op string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
