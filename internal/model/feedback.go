package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackEntry is one row of the append-only ratings log.
type FeedbackEntry struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null;index"`
	PromptText string    `json:"prompt_text" gorm:"type:text;not null"`
	Rating     int       `json:"rating" gorm:"not null;index"`
}

func (FeedbackEntry) TableName() string {
	return "feedback_entries"
}
