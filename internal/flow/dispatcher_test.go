package flow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsPerUserOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const users = 10
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for _, ev := range happyPath(userID) {
				ev.Payload = personalize(ev, userID)
				assert.NoError(t, h.d.Submit(ctx, ev))
			}
		}(int64(2000 + i))
	}
	wg.Wait()
	h.d.Close()

	assert.Zero(t, h.d.Lanes())
	orders, err := h.store.ListOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, users)
	for _, o := range orders {
		assert.Equal(t, personalAddress(o.UserID), o.Address, "order of %d", o.UserID)
		assert.Equal(t, StateIdle, h.state(t, o.UserID))
	}
	assert.Equal(t, users, h.notifier.count())
}

func personalize(ev Event, userID int64) string {
	if ev.Kind == EventText && ev.Payload == "Tashkent St 5" {
		return personalAddress(userID)
	}
	return ev.Payload
}

func personalAddress(userID int64) string {
	return "Uy " + string(rune('A'+userID%26))
}

func TestDispatcherIsolatesPanics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.out.panicFor = 3001

	require.NoError(t, h.d.Submit(ctx, command(3001, CommandStart)))
	for _, ev := range happyPath(3002) {
		require.NoError(t, h.d.Submit(ctx, ev))
	}
	h.d.Close()

	n, err := h.store.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateIdle, h.state(t, 3001))
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	h := newHarness(t)
	h.d.Close()
	assert.ErrorIs(t, h.d.Submit(context.Background(), command(customerID, CommandStart)), ErrClosed)
}
