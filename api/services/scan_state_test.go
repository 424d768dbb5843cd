package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"legend/api/types"
)

func setupScanState(t *testing.T) (*ScanState, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	return NewScanState(client, time.Minute, nil), mr
}

func TestScanState_LockIsExclusive(t *testing.T) {
	state, _ := setupScanState(t)
	ctx := context.Background()

	release, err := state.Acquire(ctx)
	require.NoError(t, err)

	_, err = state.Acquire(ctx)
	assert.ErrorIs(t, err, types.ErrScanInProgress)

	release()

	release, err = state.Acquire(ctx)
	require.NoError(t, err)
	release()
}

func TestScanState_LockExpires(t *testing.T) {
	state, mr := setupScanState(t)
	ctx := context.Background()

	stale, err := state.Acquire(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	release, err := state.Acquire(ctx)
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists(scanLockKey), "stale holder must not release the new lock")

	release()
	assert.False(t, mr.Exists(scanLockKey))
}

func TestScanState_LastScans(t *testing.T) {
	state, _ := setupScanState(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, state.MarkScanned(ctx, types.GroupPrimary, at))

	scans, err := state.LastScans(ctx, types.GroupPrimary, types.GroupSecondary)
	require.NoError(t, err)

	assert.Len(t, scans, 1)
	assert.True(t, at.Equal(scans[types.GroupPrimary]))
}

func TestScanState_LogsFailedRelease(t *testing.T) {
	state, mr := setupScanState(t)
	core, logs := observer.New(zap.WarnLevel)
	state.log = zap.New(core)

	release, err := state.Acquire(context.Background())
	require.NoError(t, err)

	mr.Close()
	release()

	entries := logs.FilterMessageSnippet("failed to release scan lock").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "error")
}
