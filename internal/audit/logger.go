// Package audit keeps an in-memory trail of engine activity. Entries
// live in a capped ring; the oldest entries are dropped once the cap is
// reached.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one recorded engine event.
type Entry struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	EntityID  string                 `json:"entity_id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	Timestamp time.Time              `json:"timestamp"`
}

// Logger records engine events for later inspection.
type Logger struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	logger   *zap.Logger
}

// NewLogger creates an audit logger retaining at most capacity entries.
func NewLogger(capacity int, logger *zap.Logger) *Logger {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Logger{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// LogEvent appends an event to the trail.
func (l *Logger) LogEvent(eventType, entityID, action string, details map[string]interface{}) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		ID:        uuid.New().String(),
		EventType: eventType,
		EntityID:  entityID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	}

	if len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)

	l.logger.Debug("audit event recorded",
		zap.String("event_type", eventType),
		zap.String("entity_id", entityID),
		zap.String("action", action))

	return entry.ID
}

// Entries returns a snapshot of the trail, newest last.
func (l *Logger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntriesByType returns the recorded events of one type.
func (l *Logger) EntriesByType(eventType string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Entry{}
	for _, entry := range l.entries {
		if entry.EventType == eventType {
			out = append(out, entry)
		}
	}
	return out
}
