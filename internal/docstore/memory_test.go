package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemory_SetGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	err := store.Set(ctx, "users", "u1", Document{"displayName": "Jordan", "totalTasks": 0})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jordan", doc["displayName"])
	assert.Equal(t, float64(0), doc["totalTasks"])
}

func TestMemory_GetMissing(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "users", "nope")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "users", notFound.Collection)
	assert.Equal(t, "nope", notFound.ID)
}

func TestMemory_ResolvesServerTimestamp(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	store.Now = fixedClock(now)
	ctx := context.Background()

	err := store.Set(ctx, "users", "u1", Document{"createdAt": ServerTimestamp})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, now.Format(time.RFC3339), doc["createdAt"])
}

func TestMemory_UpdateMergesTopLevel(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", Document{"displayName": "Jordan", "isOnboarded": false}))
	require.NoError(t, store.Update(ctx, "users", "u1", Document{"isOnboarded": true}))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, true, doc["isOnboarded"])
	assert.Equal(t, "Jordan", doc["displayName"])
}

func TestMemory_UpdateMissing(t *testing.T) {
	store := NewMemory()
	err := store.Update(context.Background(), "users", "ghost", Document{"a": 1})
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMemory_UpdateFieldPath(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", Document{"displayName": "Jordan"}))

	// Parent object is created on first dotted write.
	require.NoError(t, store.UpdateFieldPath(ctx, "users", "u1", "studentProfile.interests", []any{"robotics"}))
	// Subsequent writes into the same parent keep sibling fields intact.
	require.NoError(t, store.UpdateFieldPath(ctx, "users", "u1", "studentProfile.generalInfo", map[string]any{"grade": 11}))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	profile := doc["studentProfile"].(map[string]any)
	assert.Equal(t, []any{"robotics"}, profile["interests"])
	assert.Equal(t, float64(11), profile["generalInfo"].(map[string]any)["grade"])

	// Undotted path behaves as a single-field update.
	require.NoError(t, store.UpdateFieldPath(ctx, "users", "u1", "isOnboarded", true))
	doc, err = store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, true, doc["isOnboarded"])
}

func TestMemory_StreamFilter(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "US-Colleges", "c1", Document{"schoolName": "State U"}))
	require.NoError(t, store.Set(ctx, "US-Colleges", "c2", Document{"schoolName": "Tech Institute"}))

	docs, err := store.Stream(ctx, "US-Colleges", Filter{Field: "schoolName", Equals: "State U"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "State U", docs[0]["schoolName"])

	all, err := store.Stream(ctx, "US-Colleges", Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemory_Increment(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", Document{}))
	require.NoError(t, store.Increment(ctx, "users", "u1", "totalTasks", 1))
	require.NoError(t, store.Increment(ctx, "users", "u1", "totalTasks", 2))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(3), doc["totalTasks"])
}

func TestMemory_ArrayUnion(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", Document{}))
	require.NoError(t, store.ArrayUnion(ctx, "users", "u1", "tasks", "tasks/t1"))
	require.NoError(t, store.ArrayUnion(ctx, "users", "u1", "tasks", "tasks/t1", "tasks/t2"))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, []any{"tasks/t1", "tasks/t2"}, doc["tasks"])
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", Document{"nested": map[string]any{"a": "b"}}))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	doc["nested"].(map[string]any)["a"] = "mutated"

	fresh, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "b", fresh["nested"].(map[string]any)["a"])
}
