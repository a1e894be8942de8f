package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzit/models"
)

func TestLiveStateCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	caches := map[string]LiveStateCache{
		"memory": NewMemoryStateCache(),
		"redis":  NewRedisStateCache(client),
	}

	for name, cache := range caches {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			state, err := cache.Get(ctx, 7)
			require.NoError(t, err)
			assert.Nil(t, state)

			started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			require.NoError(t, cache.Set(ctx, &LiveState{
				SessionID:         7,
				Status:            models.StatusActive,
				QuestionIndex:     1,
				QuestionID:        42,
				QuestionStartedAt: started,
				TotalQuestions:    3,
			}))

			state, err = cache.Get(ctx, 7)
			require.NoError(t, err)
			require.NotNil(t, state)
			assert.Equal(t, models.StatusActive, state.Status)
			assert.Equal(t, 1, state.QuestionIndex)
			assert.True(t, started.Equal(state.QuestionStartedAt))
			assert.Equal(t, 3*time.Second, state.Elapsed(42, started.Add(3*time.Second)))
			assert.Zero(t, state.Elapsed(41, started.Add(3*time.Second)))
		})
	}

	assert.True(t, mr.Exists("game:7:state"))
	assert.Equal(t, liveStateTTL, mr.TTL("game:7:state"))
}

func TestRedisStateCacheCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("game:3:state", "not json"))

	state, err := NewRedisStateCache(client).Get(context.Background(), 3)
	assert.Error(t, err)
	assert.Nil(t, state)
}

func TestElapsedOnNilState(t *testing.T) {
	var state *LiveState
	assert.Zero(t, state.Elapsed(1, time.Now()))
}
