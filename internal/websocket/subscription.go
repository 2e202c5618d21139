package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrUnknownEntity = errors.New("unknown event entity")
	ErrUnknownAction = errors.New("unknown subscription action")
)

// Subscription actions a client can send over the socket
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ControlMessage is the only inbound message a client may send:
// {"action": "subscribe", "entities": ["report_generation"]}
type ControlMessage struct {
	Action   string       `json:"action"`
	Entities []EntityType `json:"entities"`
}

// Subscription is the set of entities a client receives events for
type Subscription struct {
	mu       sync.RWMutex
	entities map[EntityType]bool
}

// NewSubscription starts with the given entities, or with every entity when none are given
func NewSubscription(entities []EntityType) *Subscription {
	if len(entities) == 0 {
		entities = AllEntityTypes
	}
	s := &Subscription{entities: make(map[EntityType]bool, len(entities))}
	for _, e := range entities {
		s.entities[e] = true
	}
	return s
}

// Wants reports whether events about entity should be delivered
func (s *Subscription) Wants(entity EntityType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[entity]
}

// Entities returns the subscribed entities in AllEntityTypes order
func (s *Subscription) Entities() []EntityType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EntityType, 0, len(s.entities))
	for _, e := range AllEntityTypes {
		if s.entities[e] {
			out = append(out, e)
		}
	}
	return out
}

// Apply validates a control message and updates the subscription.
// Nothing changes when any entity in the message is unknown.
func (s *Subscription) Apply(msg ControlMessage) error {
	for _, e := range msg.Entities {
		if !e.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownEntity, e)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Action {
	case ActionSubscribe:
		for _, e := range msg.Entities {
			s.entities[e] = true
		}
	case ActionUnsubscribe:
		for _, e := range msg.Entities {
			delete(s.entities, e)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	return nil
}

// ApplyJSON decodes and applies a raw control message
func (s *Subscription) ApplyJSON(data []byte) error {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode control message: %w", err)
	}
	return s.Apply(msg)
}

// ParseEntities parses a comma-separated entity list such as "report_generation,recurring_bill".
// An empty string yields nil.
func ParseEntities(raw string) ([]EntityType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []EntityType
	for _, part := range strings.Split(raw, ",") {
		e := EntityType(strings.TrimSpace(part))
		if !e.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, e)
		}
		out = append(out, e)
	}
	return out, nil
}
