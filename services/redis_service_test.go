package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	cache := NewSlotCache(rdb)
	require.IsType(t, &RedisCache{}, cache)

	var out []UnitSlots
	ok, err := cache.Get(ctx, "slots:1:1:0:1", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	in := []UnitSlots{{AccommodationID: 3, RoomNo: "101", Slots: []OccupiedSlot{}}}
	require.NoError(t, cache.Set(ctx, "slots:1:1:0:1", in, time.Minute))
	require.NoError(t, cache.Set(ctx, "slots:1:2:0:1", in, time.Minute))
	require.NoError(t, cache.Set(ctx, "slots:2:1:0:1", in, time.Minute))

	ok, err = cache.Get(ctx, "slots:1:1:0:1", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	mr.FastForward(2 * time.Minute)
	ok, err = cache.Get(ctx, "slots:1:1:0:1", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	// hết hạn cả ba key, ghi lại hai key thuộc hai loại phòng khác nhau
	require.NoError(t, cache.Set(ctx, "slots:1:1:0:1", in, time.Minute))
	require.NoError(t, cache.Set(ctx, "slots:2:1:0:1", in, time.Minute))
	require.NoError(t, cache.DeletePattern(ctx, "slots:1:*"))
	assert.False(t, mr.Exists("slots:1:1:0:1"))
	assert.True(t, mr.Exists("slots:2:1:0:1"))
}

func TestNopCache(t *testing.T) {
	cache := NewSlotCache(nil)
	var out []UnitSlots
	ok, err := cache.Get(context.Background(), "k", &out)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.DeletePattern(context.Background(), "*"))
}
