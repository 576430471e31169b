package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsServerTimestamp(t *testing.T) {
	assert.True(t, IsServerTimestamp(ServerTimestamp))
	assert.True(t, IsServerTimestamp("<object Sentinel>"), "legacy string form from earlier clients")
	assert.False(t, IsServerTimestamp("2025-09-15"))
	assert.False(t, IsServerTimestamp(42))
	assert.False(t, IsServerTimestamp(nil))
}

func TestSanitize_ReplacesNestedSentinels(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	resolve := func() any { return now }

	input := map[string]any{
		"createdAt": ServerTimestamp,
		"tasks": []any{
			map[string]any{"title": "Visit campus", "updatedAt": "Sentinel value"},
		},
		"displayName": "Jordan",
	}

	out := Sanitize(input, resolve).(map[string]any)
	assert.Equal(t, now, out["createdAt"])
	assert.Equal(t, "Jordan", out["displayName"])

	task := out["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, now, task["updatedAt"])
	assert.Equal(t, "Visit campus", task["title"])
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	input := map[string]any{"createdAt": ServerTimestamp}
	Sanitize(input, func() any { return "resolved" })
	assert.Equal(t, ServerTimestamp, input["createdAt"])
}
