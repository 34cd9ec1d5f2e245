package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) has(want Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev == want {
			return true
		}
	}
	return false
}

func TestFile_GetSetRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	f, err := NewFile(t.TempDir(), nil)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Set(ctx, KeyName, "Ana"))
	v, ok, err := f.Get(ctx, KeyName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ana", v)

	require.NoError(t, f.Remove(ctx, KeyName))
	_, ok, err = f.Get(ctx, KeyName)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, f.Remove(ctx, KeyName))

	require.NoError(t, f.Close())
}

func TestFile_ReportsOutOfBandWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	f, err := NewFile(dir, nil)
	require.NoError(t, err)

	rec := &eventRecorder{}
	unsubscribe := f.Subscribe(rec.record)
	defer unsubscribe()

	// Another process writing the same directory.
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyToken), []byte("tok-1"), 0o600))
	assert.Eventually(t, func() bool {
		return rec.has(Event{Key: KeyToken, Value: "tok-1"})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, KeyToken)))
	assert.Eventually(t, func() bool {
		return rec.has(Event{Key: KeyToken, Removed: true})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.Close())
}

func TestFile_ReportsOwnWritesOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	f, err := NewFile(t.TempDir(), nil)
	require.NoError(t, err)

	rec := &eventRecorder{}
	f.Subscribe(rec.record)

	require.NoError(t, f.Set(context.Background(), KeyPlanID, "3"))
	assert.Eventually(t, func() bool {
		return rec.has(Event{Key: KeyPlanID, Value: "3"})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.Close())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	count := 0
	for _, ev := range rec.events {
		if ev.Key == KeyPlanID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
