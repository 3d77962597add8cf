package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"pending":     StatusPending,
		"In Progress": StatusInProgress,
		"in-progress": StatusInProgress,
		"done":        StatusCompleted,
		"completed":   StatusCompleted,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestTaskStatus_Next(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusPending.Next())
	assert.Equal(t, StatusCompleted, StatusInProgress.Next())
	assert.Equal(t, StatusPending, StatusCompleted.Next())
}

func TestCreated_ParsesBackendTimestamps(t *testing.T) {
	task := Task{CreatedAt: "2024-03-01T10:20:30.123456"}
	assert.Equal(t, 2024, task.Created().Year())

	project := Project{CreatedAt: "2024-03-01T10:20:30Z"}
	assert.Equal(t, 10, project.Created().Hour())

	user := User{CreatedAt: "garbage"}
	assert.True(t, user.Created().IsZero())
}
