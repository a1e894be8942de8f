package models

import (
	"time"
)

type PlayerResponse struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PlayerID       uint      `json:"player_id" gorm:"not null;uniqueIndex:idx_response_player_question"`
	QuestionID     uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_response_player_question"`
	OptionID       uint      `json:"option_id" gorm:"not null"`
	IsCorrect      bool      `json:"is_correct" gorm:"not null"`
	ScoreAwarded   int       `json:"score_awarded" gorm:"not null"`
	ResponseTimeMs int64     `json:"response_time_ms" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
}
