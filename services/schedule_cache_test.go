package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCacheRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewScheduleCache(db, time.Minute)
	ctx := context.Background()
	payload := []byte(`[{"id":"training_1","available_spots":3}]`)

	mock.ExpectGet(scheduleCacheKey).RedisNil()
	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	mock.ExpectSet(scheduleCacheKey, payload, time.Minute).SetVal("OK")
	cache.Set(ctx, payload)

	mock.ExpectGet(scheduleCacheKey).SetVal(string(payload))
	got, ok := cache.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	mock.ExpectDel(scheduleCacheKey).SetVal(1)
	cache.Invalidate(ctx)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleCacheDegradesOnErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewScheduleCache(db, time.Minute)
	ctx := context.Background()

	mock.ExpectGet(scheduleCacheKey).SetErr(assert.AnError)
	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	// A nil cache is a valid no-op, used when Redis is not wired in tests.
	var disabled *ScheduleCache
	_, ok = disabled.Get(ctx)
	assert.False(t, ok)
	disabled.Set(ctx, []byte("x"))
	disabled.Invalidate(ctx)
}
