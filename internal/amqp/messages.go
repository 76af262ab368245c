package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finboard/internal/core"

	"github.com/google/uuid"
)

// RecordChangeMessage says that the dataset changed. It carries no figures:
// consumers reload what they need from the database.
type RecordChangeMessage struct {
	ID        uuid.UUID         `json:"id"`
	Action    core.ChangeAction `json:"action"`
	YearMonth string            `json:"yearMonth,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func NewRecordChangeMessage(action core.ChangeAction, yearMonth string) *RecordChangeMessage {
	return &RecordChangeMessage{
		ID:        uuid.New(),
		Action:    action,
		YearMonth: yearMonth,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON decodes and checks a message body.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Action {
	case core.ActionUpsert, core.ActionUpdate, core.ActionDelete, core.ActionBootstrap:
	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	if msg.ID == uuid.Nil {
		return nil, fmt.Errorf("message has no id")
	}
	return &msg, nil
}
