package models

import (
	"time"
)

type Option struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	Order      int       `json:"order" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PublicOption is what players see while a question is open.
type PublicOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func (o Option) Public() PublicOption {
	return PublicOption{ID: o.ID, Text: o.Text}
}
