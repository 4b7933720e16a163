package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCatalog(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"Lasetti", "Gentra", "Kaptiva"} {
		added, err := m.AddVehicle(ctx, name)
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, _ := m.AddVehicle(ctx, "Gentra")
	assert.False(t, added)

	names, _ := m.ListVehicles(ctx)
	assert.Equal(t, []string{"Gentra", "Kaptiva", "Lasetti"}, names)

	removed, _ := m.RemoveVehicle(ctx, "Gentra")
	assert.True(t, removed)
	removed, _ = m.RemoveVehicle(ctx, "Gentra")
	assert.False(t, removed)

	routes, _ := m.ListRoutes(ctx)
	assert.Empty(t, routes)
}

func TestMemoryStoreOrdersAndUsers(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertUser(ctx, 1, "Ali"))
	require.NoError(t, m.SetUserPhone(ctx, 1, "901234567"))
	u, ok, _ := m.GetUser(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Ali", u.DisplayName)
	assert.Equal(t, "901234567", u.Phone)

	for _, ref := range []string{"a", "b", "c"} {
		_, err := m.AppendOrder(ctx, Order{Ref: ref, UserID: 1})
		require.NoError(t, err)
	}
	recent, _ := m.ListOrders(ctx, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Ref)
	assert.Equal(t, "b", recent[1].Ref)
	assert.Equal(t, int64(3), recent[0].ID)

	n, _ := m.CountOrders(ctx)
	assert.Equal(t, 3, n)
	users, _ := m.CountUsers(ctx)
	assert.Equal(t, 1, users)
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ Store = (*SQLStore)(nil)
	var _ Store = (*MemoryStore)(nil)
}
