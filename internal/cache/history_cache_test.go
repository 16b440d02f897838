package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dudas-espanol/internal/model"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redisv9.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func assertRoundTrip(t *testing.T, store *RedisHistory) {
	t.Helper()
	ctx := context.Background()
	sessionID := uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, sessionID) })

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, sessionID, model.Turn{Role: model.RoleUser, Content: "¿Se dice «haiga»?", CreatedAt: created}))
	require.NoError(t, store.Append(ctx, sessionID, model.Turn{Role: model.RoleAssistant, Content: "No, «haya».", CreatedAt: created.Add(time.Second)}))

	turns, err := store.List(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "¿Se dice «haiga»?", turns[0].Content)
	assert.True(t, created.Equal(turns[0].CreatedAt))
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, "No, «haya».", turns[1].Content)

	require.NoError(t, store.Delete(ctx, sessionID))
	turns, err = store.List(ctx, sessionID)
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestRedisHistoryRoundTrip(t *testing.T) {
	_, client := newMiniRedis(t)
	assertRoundTrip(t, NewRedisHistory(client, time.Minute))
}

func TestRedisHistoryKeyLayout(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisHistory(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", model.Turn{Role: model.RoleUser, Content: "hola"}))

	items, err := mr.List("chat:history:s1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var turn model.Turn
	require.NoError(t, json.Unmarshal([]byte(items[0]), &turn))
	assert.Equal(t, "hola", turn.Content)
	assert.Equal(t, time.Minute, mr.TTL("chat:history:s1"))
}

func TestRedisHistoryExpiresAfterIdleTTL(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisHistory(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", model.Turn{Role: model.RoleUser, Content: "uno"}))
	mr.FastForward(40 * time.Second)
	require.NoError(t, store.Append(ctx, "s1", model.Turn{Role: model.RoleAssistant, Content: "dos"}))
	mr.FastForward(40 * time.Second)

	turns, err := store.List(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, turns, 2, "each append refreshes the TTL")

	mr.FastForward(time.Minute)
	turns, err = store.List(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisHistorySessionsAreIsolated(t *testing.T) {
	_, client := newMiniRedis(t)
	store := NewRedisHistory(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", model.Turn{Role: model.RoleUser, Content: "de a"}))
	require.NoError(t, store.Append(ctx, "b", model.Turn{Role: model.RoleUser, Content: "de b"}))
	require.NoError(t, store.Delete(ctx, "a"))

	turns, err := store.List(ctx, "b")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "de b", turns[0].Content)
}

func TestRedisHistoryCorruptEntry(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisHistory(client, time.Minute)

	_, err := mr.Push("chat:history:s1", "not json")
	require.NoError(t, err)

	_, err = store.List(context.Background(), "s1")
	assert.Error(t, err)
}

func TestRedisHistoryPingFailsWhenDown(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisHistory(client, time.Minute)

	require.NoError(t, store.Ping(context.Background()))
	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

// Optional run against a real server: REDIS_TEST_ADDR=127.0.0.1:6379 go test ./internal/cache
func TestRedisHistoryLiveServer(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redisv9.NewClient(&redisv9.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable at %s: %v", addr, err)
	}
	assertRoundTrip(t, NewRedisHistory(client, time.Minute))
}
