package models

import (
	"time"
)

type Player struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;uniqueIndex:idx_player_user_session"`
	GameSessionID uint      `json:"game_session_id" gorm:"not null;uniqueIndex:idx_player_user_session"`
	Nickname      string    `json:"nickname" gorm:"size:32;not null"`
	Score         int       `json:"score" gorm:"not null;default:0"`
	JoinedAt      time.Time `json:"joined_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
