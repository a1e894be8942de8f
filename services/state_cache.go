package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"quizzit/models"
)

const liveStateTTL = 2 * time.Hour

// LiveState is the fast-changing part of a running game, kept out of the
// relational store.
type LiveState struct {
	SessionID         uint                 `json:"session_id"`
	Status            models.SessionStatus `json:"status"`
	QuestionIndex     int                  `json:"question_index"`
	QuestionID        uint                 `json:"question_id"`
	QuestionStartedAt time.Time            `json:"question_started_at"`
	TotalQuestions    int                  `json:"total_questions"`
}

// Elapsed returns how long questionID has been open, or zero when it is not
// the current question.
func (s *LiveState) Elapsed(questionID uint, now time.Time) time.Duration {
	if s == nil || s.QuestionID != questionID || s.QuestionStartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.QuestionStartedAt)
}

type LiveStateCache interface {
	// Get returns nil, nil when nothing is cached.
	Get(ctx context.Context, sessionID uint) (*LiveState, error)
	Set(ctx context.Context, state *LiveState) error
}

type RedisStateCache struct {
	client redis.UniversalClient
}

func NewRedisStateCache(client redis.UniversalClient) *RedisStateCache {
	return &RedisStateCache{client: client}
}

func stateKey(sessionID uint) string {
	return fmt.Sprintf("%s:state", models.ChannelFor(sessionID))
}

func (c *RedisStateCache) Get(ctx context.Context, sessionID uint) (*LiveState, error) {
	data, err := c.client.Get(ctx, stateKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read live state for %d", sessionID)
	}

	var state LiveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal live state for %d", sessionID)
	}
	return &state, nil
}

func (c *RedisStateCache) Set(ctx context.Context, state *LiveState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal live state")
	}
	if err := c.client.Set(ctx, stateKey(state.SessionID), data, liveStateTTL).Err(); err != nil {
		return errors.Wrapf(err, "failed to store live state for %d", state.SessionID)
	}
	return nil
}

type MemoryStateCache struct {
	mu     sync.Mutex
	states map[uint]LiveState
}

func NewMemoryStateCache() *MemoryStateCache {
	return &MemoryStateCache{states: make(map[uint]LiveState)}
}

func (c *MemoryStateCache) Get(_ context.Context, sessionID uint) (*LiveState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.states[sessionID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (c *MemoryStateCache) Set(_ context.Context, state *LiveState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states[state.SessionID] = *state
	return nil
}
