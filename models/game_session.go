package models

import (
	"time"
)

type SessionStatus string

const (
	StatusLobby    SessionStatus = "LOBBY"
	StatusActive   SessionStatus = "ACTIVE"
	StatusFinished SessionStatus = "FINISHED"
)

// Next returns the only status a session may move to from s.
func (s SessionStatus) Next() (SessionStatus, bool) {
	switch s {
	case StatusLobby:
		return StatusActive, true
	case StatusActive:
		return StatusFinished, true
	}
	return "", false
}

// Live reports whether the session still holds its pin.
func (s SessionStatus) Live() bool {
	return s == StatusLobby || s == StatusActive
}

type GameSession struct {
	ID                   uint          `json:"id" gorm:"primaryKey"`
	Pin                  string        `json:"pin" gorm:"size:6;not null;index"`
	FormID               uint          `json:"form_id" gorm:"not null;index"`
	HostID               string        `json:"host_id" gorm:"not null"`
	Status               SessionStatus `json:"status" gorm:"size:16;not null;default:'LOBBY';index"`
	CurrentQuestionIndex int           `json:"current_question_index" gorm:"not null;default:-1"`
	StartedAt            *time.Time    `json:"started_at"`
	EndedAt              *time.Time    `json:"ended_at"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// Channel is the pub/sub channel events for this session are published on.
func (g GameSession) Channel() string {
	return ChannelFor(g.ID)
}
