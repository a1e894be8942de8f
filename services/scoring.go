package services

import (
	"math"
	"time"
)

const (
	// QuestionTimeLimit is the nominal answer window of a question.
	QuestionTimeLimit = 20 * time.Second
	// SpeedBonusWindow is how long the speed bonus lasts: half the limit.
	SpeedBonusWindow = QuestionTimeLimit / 2

	basePoints     = 1000
	maxSpeedPoints = 500
)

// Score returns the points for an answer. A correct answer is worth at least
// 1000; the speed bonus falls linearly from 500 at 0ms to zero at
// SpeedBonusWindow, so 5s earns 1250 and anything from 10s on earns 1000.
func Score(isCorrect bool, responseTimeMs int64) int {
	if !isCorrect {
		return 0
	}
	window := float64(SpeedBonusWindow.Milliseconds())
	speedBonus := math.Max(0, maxSpeedPoints*(1-float64(responseTimeMs)/window))
	return int(math.Round(basePoints + speedBonus))
}

// EffectiveResponseTime never lets a client report answering faster than the
// server observed. serverElapsed is ignored when the question start is unknown
// (zero).
func EffectiveResponseTime(claimedMs int64, serverElapsed time.Duration) int64 {
	if serverElapsed <= 0 {
		return claimedMs
	}
	observed := serverElapsed.Milliseconds()
	if observed > claimedMs {
		return observed
	}
	return claimedMs
}
