// Package events provides the append-only log of discrete game occurrences.
// The network hub polls it and streams new entries to every connected
// browser; tests replay it to assert what a night actually did.
//
// The log lives in memory only and is discarded with the process.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeNightStart     EventType = "NIGHT_START"
	EventTypePhaseChange    EventType = "PHASE_CHANGE"
	EventTypeDoorToggle     EventType = "DOOR_TOGGLE"
	EventTypeCameraSwitch   EventType = "CAMERA_SWITCH"
	EventTypeCameraRejected EventType = "CAMERA_REJECTED"
	EventTypeMonitorToggle  EventType = "MONITOR_TOGGLE"
	EventTypeActorMoved     EventType = "ACTOR_MOVED"
	EventTypeActorRepelled  EventType = "ACTOR_REPELLED"
	EventTypeActorJumped    EventType = "ACTOR_JUMPED"
	EventTypeDeddyAlert     EventType = "DEDDY_ALERT"
	EventTypeNightCleared   EventType = "NIGHT_CLEARED"
	EventTypeAutoAdvance    EventType = "AUTO_ADVANCE"
	EventTypeGameOver       EventType = "GAME_OVER"
	EventTypeVictory        EventType = "VICTORY"
)

// GameEvent is an immutable record of something that happened during a night.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor,omitempty"` // animatronic or "PLAYER"/"SYSTEM"
	Payload   interface{} `json:"payload,omitempty"`
	Night     int         `json:"night"`
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu     sync.RWMutex
	events []GameEvent
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{events: make([]GameEvent, 0)}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)
}

// Replay returns the full history of events, oldest first.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// Since returns the events appended after the given offset, plus the new
// offset. Pollers use it to pick up where they left off.
func (el *EventLog) Since(offset int) ([]GameEvent, int) {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if offset >= len(el.events) {
		return nil, len(el.events)
	}
	return el.events[offset:], len(el.events)
}

// ByNight returns all events recorded during a specific night.
func (el *EventLog) ByNight(night int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Night == night {
			result = append(result, e)
		}
	}
	return result
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
