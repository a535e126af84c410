package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	runID := uuid.NewString()

	require.NoError(t, s.BeginRun(ctx, runID, time.Now()))

	require.NoError(t, s.RecordCase(ctx, &CaseResult{
		RunID:       runID,
		Seq:         1,
		Description: "java -jar JSettlersServer.jar; no jsserver.properties",
		DidStartup:  true,
		Passed:      true,
		Duration:    21 * time.Second,
	}))
	require.NoError(t, s.RecordCase(ctx, &CaseResult{
		RunID:         runID,
		Seq:           2,
		Description:   "java -jar JSettlersServer.jar -o NT=t -o NT=y; no jsserver.properties",
		CmdlineParams: "-o NT=t -o NT=y",
		DidStartup:    false,
		ExitCode:      intPtr(1),
		Passed:        false,
		Duration:      800 * time.Millisecond,
		Output:        "option cannot appear twice on command line: NT",
	}))

	require.NoError(t, s.FinishRun(ctx, runID, 2, 1))

	cases, err := s.RunCases(ctx, runID)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.True(t, cases[0].DidStartup)
	assert.Nil(t, cases[0].ExitCode)
	assert.True(t, cases[0].Passed)
	assert.Equal(t, 21*time.Second, cases[0].Duration)

	assert.False(t, cases[1].DidStartup)
	require.NotNil(t, cases[1].ExitCode)
	assert.Equal(t, 1, *cases[1].ExitCode)
	assert.Contains(t, cases[1].Output, "option cannot appear twice")

	failed, err := s.FailCount(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}

func TestStorePropsFileNullable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	runID := uuid.NewString()
	require.NoError(t, s.BeginRun(ctx, runID, time.Now()))

	require.NoError(t, s.RecordCase(ctx, &CaseResult{
		RunID: runID, Seq: 1, Description: "no props", DidStartup: true, Passed: true,
	}))
	require.NoError(t, s.RecordCase(ctx, &CaseResult{
		RunID: runID, Seq: 2, Description: "with props",
		PropsFile: strPtr("jsettlers.gameopt.NT=y\n"), Passed: true,
	}))

	cases, err := s.RunCases(ctx, runID)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Nil(t, cases[0].PropsFile)
	require.NotNil(t, cases[1].PropsFile)
	assert.Equal(t, "jsettlers.gameopt.NT=y\n", *cases[1].PropsFile)
}

func TestStoreCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.BeginRun(context.Background(), uuid.NewString(), time.Now()))
}

func TestStoreRunCasesEmpty(t *testing.T) {
	s := newTestStore(t)

	cases, err := s.RunCases(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, cases)
}
