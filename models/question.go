package models

import (
	"time"
)

type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FormID    uint      `json:"form_id" gorm:"not null;index"`
	Label     string    `json:"label" gorm:"not null"`
	Order     int       `json:"order" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

// OptionByID returns the option with the given id, or nil if the question has none.
func (q *Question) OptionByID(id uint) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}
