package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarlsson/sledge/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, st.Initialize())
	t.Cleanup(func() { st.Close() })
	return st
}

func forwardPlan() *models.DeploymentPlan {
	return &models.DeploymentPlan{
		Revset:    "1111..origin/master",
		Direction: models.DirectionForward,
		Entries: []models.CommitRecord{
			{Hash: "aaa1", Branch: "master", Author: "Jane Doe <jane@example.com>", Message: "Add the migration"},
		},
	}
}

func TestRecordAndList(t *testing.T) {
	st := setupTestStore(t)

	id, err := st.Record("git", "/srv/app", "master", forwardPlan(), true)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := st.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "git", e.VCS)
	assert.Equal(t, "/srv/app", e.CodeDir)
	assert.Equal(t, "master", e.Revision)
	assert.True(t, e.Applied)
	assert.Equal(t, "1111..origin/master", e.Plan.Revset)
	assert.Equal(t, models.DirectionForward, e.Plan.Direction)
	require.Len(t, e.Plan.Entries, 1)
	assert.Equal(t, "aaa1", e.Plan.Entries[0].Hash)
	assert.Equal(t, "Jane Doe <jane@example.com>", e.Plan.Entries[0].Author)
}

func TestRecord_NoOpPlan(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.Record("hg", "/srv/app", "", models.NoOpPlan(), false)
	require.NoError(t, err)

	last, err := st.Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.False(t, last.Applied)
	assert.True(t, last.Plan.IsNoOp())
	assert.Equal(t, models.NoOpMessage, last.Plan.Message)
	assert.Empty(t, last.Plan.Entries)
}

func TestList_NewestFirstAndLimited(t *testing.T) {
	st := setupTestStore(t)

	first, err := st.Record("git", "/srv/app", "master", forwardPlan(), false)
	require.NoError(t, err)
	second, err := st.Record("git", "/srv/app", "stable", forwardPlan(), true)
	require.NoError(t, err)

	entries, err := st.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, first, entries[1].ID)

	limited, err := st.List(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second, limited[0].ID)
}

func TestLast_EmptyJournal(t *testing.T) {
	st := setupTestStore(t)

	last, err := st.Last()
	require.NoError(t, err)
	assert.Nil(t, last)
}
