package repository

import (
	"context"

	"github.com/lshigami/QuizBomber/internal/model"
	"gorm.io/gorm"
)

// FeedbackRepository is the append-only ratings log. Entries are never updated or deleted.
type FeedbackRepository interface {
	Create(ctx context.Context, entry *model.FeedbackEntry) error
	FindAll(ctx context.Context) ([]model.FeedbackEntry, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// AutoMigrate creates the feedback table when it is missing.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.FeedbackEntry{})
}

func (r *feedbackRepository) Create(ctx context.Context, entry *model.FeedbackEntry) error {
	// Single INSERT; each rating is durable on its own.
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *feedbackRepository) FindAll(ctx context.Context) ([]model.FeedbackEntry, error) {
	var entries []model.FeedbackEntry
	if err := r.db.WithContext(ctx).Order("recorded_at asc, id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
