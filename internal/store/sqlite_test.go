package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linecrew/makeready-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "survey.json", "engineering.json")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "survey.json", got.SurveyFile)
	assert.Equal(t, "engineering.json", got.EngineeringFile)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Zero(t, got.PoleCount)
	assert.Empty(t, got.Error)
}

func TestSQLite_CreateRun_NoEngineeringFile(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "survey.json", "")
	require.NoError(t, err)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EngineeringFile)
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "survey.json", "engineering.json")
	require.NoError(t, err)

	err = st.UpdateRunResult(ctx, run.ID, RunResult{PoleCount: 42, ErrorCount: 3})
	require.NoError(t, err)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 42, got.PoleCount)
	assert.Equal(t, 3, got.ErrorCount)
}

func TestSQLite_UpdateRunResult_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunResult(context.Background(), "no-such-run", RunResult{PoleCount: 1})
	assert.Error(t, err)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "survey.json", "")
	require.NoError(t, err)

	err = st.FailRun(ctx, run.ID, "survey file missing nodes")
	require.NoError(t, err)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "survey file missing nodes", got.Error)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing-id")
	assert.Error(t, err)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "a.json", "")
	require.NoError(t, err)
	b, err := st.CreateRun(ctx, "b.json", "")
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunResult(ctx, a.ID, RunResult{PoleCount: 5}))

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	running, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, b.ID, running[0].ID)
}

func TestSQLite_ListRuns_LimitOffset(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.CreateRun(ctx, "survey.json", "")
		require.NoError(t, err)
	}

	page1, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page2, err := st.ListRuns(ctx, RunFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestSQLite_ListRuns_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	runs, err := st.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}
