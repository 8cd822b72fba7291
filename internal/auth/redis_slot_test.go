package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/kodbank/backend/internal/bank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSlot_Get(t *testing.T) {
	client, mock := redismock.NewClientMock()
	slot := NewRedisSlots(client).Slot("device-1")
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet("kodbank:device-1:kodbank_token").SetVal("abc")

		val, ok, err := slot.Get(ctx, "kodbank_token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", val)
	})

	t.Run("miss", func(t *testing.T) {
		mock.ExpectGet("kodbank:device-1:kodbank_token").RedisNil()

		_, ok, err := slot.Get(ctx, "kodbank_token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("redis down", func(t *testing.T) {
		mock.ExpectGet("kodbank:device-1:kodbank_token").SetErr(errors.New("dial tcp: connection refused"))

		_, _, err := slot.Get(ctx, "kodbank_token")
		assert.ErrorIs(t, err, bank.ErrStorageUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSlot_SetAllAndDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	slot := NewRedisSlots(client).Slot("device-1")
	ctx := context.Background()

	mock.ExpectTxPipeline()
	mock.ExpectSet("kodbank:device-1:kodbank_token", "tok", 0).SetVal("OK")
	mock.ExpectSet("kodbank:device-1:kodbank_user", `{"id":1}`, 0).SetVal("OK")
	mock.ExpectTxPipelineExec()

	err := slot.SetAll(ctx, map[string]string{
		"kodbank_user":  `{"id":1}`,
		"kodbank_token": "tok",
	}, 0)
	require.NoError(t, err)

	mock.ExpectDel("kodbank:device-1:kodbank_user", "kodbank:device-1:kodbank_token").SetVal(2)
	require.NoError(t, slot.Delete(ctx, "kodbank_user", "kodbank_token"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySlot_TTL(t *testing.T) {
	store := NewMemorySlots()
	now := time.Now()
	store.now = func() time.Time { return now }
	slot := store.Slot("d")
	ctx := context.Background()

	require.NoError(t, slot.SetAll(ctx, map[string]string{"unlock": "1"}, time.Minute))
	_, ok, _ := slot.Get(ctx, "unlock")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = slot.Get(ctx, "unlock")
	assert.False(t, ok)
}

func TestMemorySlot_DevicesAreIsolated(t *testing.T) {
	store := NewMemorySlots()
	ctx := context.Background()

	require.NoError(t, store.Slot("a").SetAll(ctx, map[string]string{"k": "v"}, 0))
	_, ok, _ := store.Slot("b").Get(ctx, "k")
	assert.False(t, ok)
}
