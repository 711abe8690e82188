package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schedmesh/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sched.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.CloseDB() })
	return store
}

func TestSQLiteStore_GetOrCreate(t *testing.T) {
	store := newTestSQLiteStore(t)

	sess, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, core.SessionActive, sess.Status)

	again, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.True(t, sess.Created.Equal(again.Created))
}

func TestSQLiteStore_ReadAfterWrite(t *testing.T) {
	store := newTestSQLiteStore(t)

	sess, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	sess.State = []byte(`{"draft":"standup"}`)
	require.NoError(t, store.Save(sess))

	got, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"draft":"standup"}`), got.State)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sched.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	sess, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	sess.State = []byte("persisted")
	require.NoError(t, store.Save(sess))
	_, err = store.Remember("s1", "alice prefers morning meetings")
	require.NoError(t, err)
	require.NoError(t, store.CloseDB())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.CloseDB()

	got, err := reopened.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got.State)

	recs, err := reopened.Search("morning", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSQLiteStore_CloseKeepsSession(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	require.NoError(t, store.Close("s1"))

	got, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, core.SessionClosed, got.Status)

	active, err := store.Active()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSQLiteStore_ActiveOrdering(t *testing.T) {
	store := newTestSQLiteStore(t)

	for _, id := range []string{"a", "b", "c"} {
		sess, err := store.GetOrCreate(id)
		require.NoError(t, err)
		require.NoError(t, store.Save(sess))
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, store.Close("b"))

	active, err := store.Active()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "c", active[0].ID)
	assert.Equal(t, "a", active[1].ID)
}

func TestSQLiteStore_SearchRelevance(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Remember("s1", "quarterly budget review in room A")
	require.NoError(t, err)
	_, err = store.Remember("s1", "team offsite planning")
	require.NoError(t, err)
	_, err = store.Remember("s2", "budget approval pending from finance")
	require.NoError(t, err)

	got, err := store.Search("budget review", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Contains(t, rec.Content, "budget")
	}

	none, err := store.Search("kubernetes", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_SearchSubstring(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Remember("s1", "prefers video-call over in-person")
	require.NoError(t, err)

	got, err := store.Search("video-call", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSQLiteStore_SearchCrossesSessions(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Remember("s1", "facility east wing booked fridays")
	require.NoError(t, err)
	_, err = store.Remember("s2", "east wing projector is broken")
	require.NoError(t, err)

	got, err := store.Search("east wing", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteStore_SearchQuotesFTSSyntax(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Remember("s1", "notes about planning")
	require.NoError(t, err)

	// FTS operators in the query must not cause a syntax error.
	_, err = store.Search(`planning AND "unbalanced`, 10)
	assert.NoError(t, err)
}
