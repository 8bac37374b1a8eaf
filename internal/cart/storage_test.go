package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/redis"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return mr, redis.Wrap(raw)
}

func TestRedisStorageMissingKeyIsEmpty(t *testing.T) {
	_, client := newMiniredisClient(t)
	storage := NewRedisStorage(client, 0)

	data, err := storage.Read(context.Background(), client.CartKey("session-1", "origen_cart_v1"))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisStorageBackedStoreSurvivesRestart(t *testing.T) {
	mr, client := newMiniredisClient(t)
	storage := NewRedisStorage(client, time.Hour)
	key := client.CartKey("session-1", "origen_cart_v1")
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	store := NewStore(context.Background(), StoreOptions{Key: key, Storage: storage, Clock: newFakeClock(), Logger: logg})
	store.AddItem(cafe, 2, AddOptions{})
	store.AddItem(ItemInput{ID: "sku-2", Name: "Miel", Price: 18000}, 1, AddOptions{})

	raw, err := mr.Get("origen:cart:session-1:origen_cart_v1")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"sku-1","name":"Café","price":25000,"image":"https://cdn.origen.co/cafe.jpg","quantity":2},
		{"id":"sku-2","name":"Miel","price":18000,"image":"","quantity":1}
	]`, raw)
	assert.Equal(t, time.Hour, mr.TTL("origen:cart:session-1:origen_cart_v1"))

	reloaded := NewStore(context.Background(), StoreOptions{Key: key, Storage: storage, Clock: newFakeClock(), Logger: logg})
	assert.Equal(t, store.Items(), reloaded.Items())
}

func TestRedisStorageOutageKeepsCartInMemory(t *testing.T) {
	mr, client := newMiniredisClient(t)
	storage := NewRedisStorage(client, 0)
	key := client.CartKey("session-1", "origen_cart_v1")

	store := NewStore(context.Background(), StoreOptions{Key: key, Storage: storage, Clock: newFakeClock(), SaveTimeout: 200 * time.Millisecond})
	mr.Close()

	store.AddItem(cafe, 1, AddOptions{})
	assert.Len(t, store.Items(), 1)
	assert.Error(t, store.Flush(context.Background()))
}

func TestRedisStorageCorruptSnapshotLoadsEmpty(t *testing.T) {
	mr, client := newMiniredisClient(t)
	require.NoError(t, mr.Set("origen:cart:session-1:origen_cart_v1", "not json"))

	store := NewStore(context.Background(), StoreOptions{
		Key:     client.CartKey("session-1", "origen_cart_v1"),
		Storage: NewRedisStorage(client, 0),
		Clock:   newFakeClock(),
	})
	assert.Empty(t, store.Items())
}
