package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/cache"
)

func TestSnapshot_LookupAndSearch(t *testing.T) {
	snap := NewSnapshot([]domain.Medicine{amoxicillin, paracetamol, vitaminC, {ID: "empty", Name: "Out Of Stock"}}, time.Now())
	assert.Equal(t, 3, snap.Len())

	got, ok := snap.Lookup(paracetamol.ID)
	require.True(t, ok)
	assert.Equal(t, "Paracetamol", got.Name)
	_, ok = snap.Lookup("empty")
	assert.False(t, ok)

	assert.Len(t, snap.Search("", 0), 3)
	assert.Len(t, snap.Search("", 2), 2)
	found := snap.Search("CILL", 10)
	require.Len(t, found, 1)
	assert.Equal(t, amoxicillin.ID, found[0].ID)
	assert.Empty(t, snap.Search("zzz", 10))
}

type countingSource struct {
	items []domain.Medicine
	calls int
	err   error
}

func (c *countingSource) ListSellable(context.Context) ([]domain.Medicine, error) {
	c.calls++
	return c.items, c.err
}

func TestLoadSnapshot_Error(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), &countingSource{err: errors.New("db down")})
	assert.Error(t, err)
}

func TestCachedCatalog_UsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	src := &countingSource{items: []domain.Medicine{paracetamol}}
	catalog := NewCachedCatalog(src, cache.NewRedisCatalog(client, time.Minute), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		items, err := catalog.ListSellable(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, 1, src.calls)

	src.items = []domain.Medicine{paracetamol, vitaminC}
	items, err := catalog.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, src.calls)

	items, err = catalog.ListSellable(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, src.calls)
}

func TestCachedCatalog_RedisDownFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	src := &countingSource{items: []domain.Medicine{paracetamol}}
	catalog := NewCachedCatalog(src, cache.NewRedisCatalog(client, time.Minute), nil)

	items, err := catalog.ListSellable(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
