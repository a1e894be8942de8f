package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		description    string
		isCorrect      bool
		responseTimeMs int64
		expected       int
	}{
		{"instant correct answer", true, 0, 1500},
		{"correct at five seconds", true, 5000, 1250},
		{"correct at seven and a half seconds", true, 7500, 1125},
		{"bonus gone at half the limit", true, 10000, 1000},
		{"correct at the time limit", true, 20000, 1000},
		{"correct after the time limit", true, 45000, 1000},
		{"rounding half up", true, 1, 1500},
		{"incorrect instant answer", false, 0, 0},
		{"incorrect slow answer", false, 19999, 0},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Score(tc.isCorrect, tc.responseTimeMs))
		})
	}
}

func TestScoreBounds(t *testing.T) {
	for ms := int64(0); ms <= 60000; ms += 250 {
		got := Score(true, ms)
		assert.GreaterOrEqual(t, got, 1000, "response time %d", ms)
		assert.LessOrEqual(t, got, 1500, "response time %d", ms)
		assert.Zero(t, Score(false, ms))
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	prev := Score(true, 0)
	for ms := int64(100); ms <= 25000; ms += 100 {
		got := Score(true, ms)
		assert.LessOrEqual(t, got, prev, "response time %d", ms)
		prev = got
	}
}

func TestEffectiveResponseTime(t *testing.T) {
	assert.Equal(t, int64(3000), EffectiveResponseTime(3000, 0))
	assert.Equal(t, int64(8000), EffectiveResponseTime(0, 8*time.Second))
	assert.Equal(t, int64(9000), EffectiveResponseTime(9000, 8*time.Second))
}
