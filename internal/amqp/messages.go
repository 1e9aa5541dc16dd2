package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a ledger state change.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
	PeriodSettled      EventType = "period.settled"
)

// LedgerEvent is a lightweight notification. It only carries the ID of the
// affected transaction or settlement; consumers load the record themselves.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType, id string) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects unknown types.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case TransactionCreated, TransactionDeleted, PeriodSettled:
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("event %s without id", ev.Type)
	}
	return &ev, nil
}
