package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is bumped whenever the envelope changes incompatibly.
const SchemaVersion = 1

// Event is the envelope for storefront order events. OrderID doubles as the
// message key, so every event of one order lands on the same partition.
// Data holds the event-specific payload: totals and item count for a placed
// order, the order and user ids for a cancellation.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OrderID       string          `json:"order_id"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	VisitorID     string          `json:"visitor_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data for the given order. The timestamp is stored in UTC.
func NewEvent(eventType, orderID, source string, at time.Time, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OrderID:    orderID,
		Version:    SchemaVersion,
		OccurredAt: at.UTC(),
		Source:     source,
		Data:       payload,
	}, nil
}

// WithCorrelationID ties the event to the request that caused it.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithVisitorID records the storefront visitor behind the order.
func (e *Event) WithVisitorID(id string) *Event {
	e.VisitorID = id
	return e
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
