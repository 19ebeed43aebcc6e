package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/chatlist/pkg/adapters/redis"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))
	require.NoError(t, store.Save(ctx, "chats", domain.NewSnapshot("chats")))

	assert.True(t, mr.Exists("test:list:chats"))
	assert.Equal(t, time.Minute, mr.TTL("test:list:chats"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "chats")
	assert.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set(store.Key("broken"), "{not json"))

	_, err := store.Load(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrListNotFound)
}

func TestRedisStore_ListIDsCannotReachTheIndex(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()
	store := redis.NewFromClient(client)

	for _, id := range []string{"chats", "index", "list:index", ""} {
		require.NoError(t, store.Save(ctx, id, domain.NewSnapshot(id)), "save %q", id)
	}
	assert.Equal(t, "zset", mr.Type(redis.DefaultPrefix+"index"))

	lists, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"chats", "index", "list:index", ""}, lists)

	loaded, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", loaded.ListID)
}
