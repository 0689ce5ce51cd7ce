package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTrackerSweepOverdue(t *testing.T) {
	tracker := NewTracker(zap.NewNop())
	now := date(2025, time.June, 1)

	dueID := tracker.Track(ComplianceAction{
		FormNumber: "26Q",
		DueDate:    date(2025, time.March, 31),
		Status:     StatusPending,
	})
	openID := tracker.Track(ComplianceAction{
		FormNumber: "15CA",
		DueDate:    date(2025, time.June, 10),
		Status:     StatusPending,
	})
	doneID := tracker.Track(ComplianceAction{
		FormNumber: "VAT Return",
		DueDate:    date(2025, time.January, 20),
		Status:     StatusCompleted,
	})

	marked := tracker.SweepOverdue(now)
	assert.Equal(t, 1, marked)

	due, ok := tracker.Get(dueID)
	require.True(t, ok)
	assert.Equal(t, StatusOverdue, due.Action.Status)

	open, ok := tracker.Get(openID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, open.Action.Status)

	done, ok := tracker.Get(doneID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, done.Action.Status)

	// A second sweep must not re-mark the already-overdue action.
	assert.Equal(t, 0, tracker.SweepOverdue(now))
}

func TestTrackerUpdateStatus(t *testing.T) {
	tracker := NewTracker(zap.NewNop())

	id := tracker.Track(ComplianceAction{FormNumber: "26Q", Status: StatusPending})
	assert.True(t, tracker.UpdateStatus(id, StatusInProgress))

	tracked, ok := tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, tracked.Action.Status)

	assert.False(t, tracker.UpdateStatus("missing-id", StatusCompleted))
	assert.Len(t, tracker.List(), 1)
}
