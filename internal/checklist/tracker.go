package checklist

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackedAction is a compliance action registered with the deadline
// monitor.
type TrackedAction struct {
	ID        string           `json:"id"`
	Action    ComplianceAction `json:"action"`
	TrackedAt time.Time        `json:"tracked_at"`
}

// Tracker holds compliance actions awaiting completion and sweeps them
// for missed deadlines. The core generator only creates Pending actions;
// the tracker is the transition authority for Overdue.
type Tracker struct {
	mu      sync.RWMutex
	actions map[string]*TrackedAction
	logger  *zap.Logger
}

// NewTracker creates an empty deadline tracker.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		actions: make(map[string]*TrackedAction),
		logger:  logger,
	}
}

// Track registers an action for deadline monitoring and returns its
// tracking id.
func (t *Tracker) Track(action ComplianceAction) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.New().String()
	t.actions[id] = &TrackedAction{
		ID:        id,
		Action:    action,
		TrackedAt: time.Now(),
	}
	return id
}

// UpdateStatus moves a tracked action to a new status. It returns false
// when the id is unknown.
func (t *Tracker) UpdateStatus(id string, status ComplianceStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.actions[id]
	if !ok {
		return false
	}
	tracked.Action.Status = status
	return true
}

// Get returns a tracked action by id.
func (t *Tracker) Get(id string) (TrackedAction, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tracked, ok := t.actions[id]
	if !ok {
		return TrackedAction{}, false
	}
	return *tracked, true
}

// List returns a snapshot of all tracked actions.
func (t *Tracker) List() []TrackedAction {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]TrackedAction, 0, len(t.actions))
	for _, tracked := range t.actions {
		out = append(out, *tracked)
	}
	return out
}

// SweepOverdue marks open actions whose due date has passed as Overdue
// and returns how many transitions it made. Completed and Escalated
// actions are left alone.
func (t *Tracker) SweepOverdue(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	marked := 0
	for _, tracked := range t.actions {
		status := tracked.Action.Status
		if status == StatusCompleted || status == StatusEscalated || status == StatusOverdue {
			continue
		}
		if now.After(tracked.Action.DueDate) {
			tracked.Action.Status = StatusOverdue
			marked++
			t.logger.Warn("compliance action overdue",
				zap.String("id", tracked.ID),
				zap.String("form", tracked.Action.FormNumber),
				zap.Time("due_date", tracked.Action.DueDate))
		}
	}
	return marked
}
