package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	State string            `json:"state"`
	Draft map[string]string `json:"draft,omitempty"`
}

func newInMemoryBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func exerciseStore(t *testing.T, s Store[snapshot]) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "absent user has no snapshot")

	want := snapshot{State: "awaiting_date", Draft: map[string]string{"direction": "Xorazmdan Buxoroga"}}
	require.NoError(t, s.Put(ctx, 1, want))
	require.NoError(t, s.Put(ctx, 2, snapshot{State: "admin_menu"}))

	got, ok, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.Delete(ctx, 1))
	_, ok, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	other, ok, err := s.Get(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "admin_menu", other.State)

	require.NoError(t, s.Delete(ctx, 99), "deleting an absent snapshot is a no-op")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore[snapshot]())
}

func TestBadgerStore(t *testing.T) {
	exerciseStore(t, NewBadgerStore[snapshot](newInMemoryBadger(t)))
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, NewBadgerStore[snapshot](db).Put(ctx, 7, snapshot{State: "awaiting_phone"}))
	require.NoError(t, db.Close())

	db, err = OpenBadger(dir)
	require.NoError(t, err)
	defer db.Close()
	got, ok, err := NewBadgerStore[snapshot](db).Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "awaiting_phone", got.State)
}

func TestKeyedMutexSerialisesSameUser(t *testing.T) {
	var km KeyedMutex
	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(42)
			defer unlock()
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Equal(t, 0, km.Len(), "entries are released after use")
}

func TestKeyedMutexIndependentUsers(t *testing.T) {
	var km KeyedMutex
	unlockA := km.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock(2)
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another user blocked")
	}
	unlockA()
}
