package models

import (
	"time"

	"gorm.io/gorm"
)

// Form is a question set. Only forms flagged as quizzes can host a live game.
type Form struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	OwnerID     string         `json:"owner_id" gorm:"not null;index"`
	IsQuiz      bool           `json:"is_quiz" gorm:"not null;default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
}
