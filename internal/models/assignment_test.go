package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionMatrix(t *testing.T) {
	cases := []struct {
		from    AssignmentStatus
		to      AssignmentStatus
		allowed bool
	}{
		{AssignmentStatusDraft, AssignmentStatusPublished, true},
		{AssignmentStatusDraft, AssignmentStatusCancelled, true},
		{AssignmentStatusDraft, AssignmentStatusCompleted, false},
		{AssignmentStatusDraft, AssignmentStatusDraft, false},
		{AssignmentStatusPublished, AssignmentStatusCompleted, true},
		{AssignmentStatusPublished, AssignmentStatusCancelled, true},
		{AssignmentStatusPublished, AssignmentStatusDraft, false},
		{AssignmentStatusPublished, AssignmentStatusPublished, false},
		{AssignmentStatusCompleted, AssignmentStatusDraft, false},
		{AssignmentStatusCompleted, AssignmentStatusPublished, false},
		{AssignmentStatusCompleted, AssignmentStatusCancelled, false},
		{AssignmentStatusCancelled, AssignmentStatusDraft, false},
		{AssignmentStatusCancelled, AssignmentStatusPublished, false},
		{AssignmentStatusCancelled, AssignmentStatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, AssignmentStatusDraft.Terminal())
	assert.False(t, AssignmentStatusPublished.Terminal())
	assert.True(t, AssignmentStatusCompleted.Terminal())
	assert.True(t, AssignmentStatusCancelled.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, AssignmentStatusDraft.Valid())
	assert.True(t, AssignmentStatusCancelled.Valid())
	assert.False(t, AssignmentStatus("ARCHIVED").Valid())
	assert.False(t, AssignmentStatus("").Valid())
}
