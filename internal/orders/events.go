package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const eventVersion = 1

const (
	EventOrderMerged   = "order.merged"
	EventOrderReplaced = "order.replaced"
	EventOrderDeleted  = "order.deleted"
)

// EventEnvelope is the stable JSON body published for every ledger change.
type EventEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderWrittenEvent is the payload for merged and replaced orders.
type OrderWrittenEvent struct {
	Order    OrderView `json:"order"`
	Delta    int64     `json:"delta"`
	Inserted bool      `json:"inserted"`
}

// OrderDeletedEvent is the payload for deletions.
type OrderDeletedEvent struct {
	StorageKey   uuid.UUID `json:"storageKey"`
	DeletedCount int64     `json:"deletedCount"`
}

func newEnvelope(eventType string, payload any, now time.Time) ([]byte, map[string]string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	env := EventEnvelope{
		Version:    eventVersion,
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: now.UTC(),
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, nil, err
	}
	attrs := map[string]string{
		"event_type": eventType,
		"event_id":   env.EventID,
	}
	return body, attrs, nil
}
