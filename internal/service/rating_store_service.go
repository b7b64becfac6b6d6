package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/lshigami/QuizBomber/internal/repository"
	"github.com/rs/zerolog/log"
)

const maxOkayExamples = 2

// RatingRecorder appends a player's rating of a prompt.
type RatingRecorder interface {
	Record(ctx context.Context, promptText string, rating int) error
}

type RatingStore interface {
	RatingRecorder
	ExampleSource
}

type ratingStoreService struct {
	repo  repository.FeedbackRepository
	clock Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRatingStoreService(repo repository.FeedbackRepository, clock Clock, rng *rand.Rand) RatingStore {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ratingStoreService{repo: repo, clock: clock, rng: rng}
}

// Record writes one entry. Failed writes are reported and dropped, never retried.
func (s *ratingStoreService) Record(ctx context.Context, promptText string, rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return fmt.Errorf("%w: rating %d outside [%d,%d]", model.ErrInvalidAction, rating, model.MinRating, model.MaxRating)
	}
	entry := &model.FeedbackEntry{
		RecordedAt: s.clock.Now(),
		PromptText: promptText,
		Rating:     rating,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Int("rating", rating).Msg("Failed to record rating")
		return fmt.Errorf("%w: %v", model.ErrPersistenceUnavailable, err)
	}
	log.Info().Int("rating", rating).Str("prompt", promptText).Msg("Rating recorded")
	return nil
}

// SampleExamples returns every 5-rated prompt plus up to two random 4-rated ones as good,
// and every prompt rated 2 or lower as bad.
func (s *ratingStoreService) SampleExamples(ctx context.Context) ([]string, []string, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return []string{}, []string{}, fmt.Errorf("%w: %v", model.ErrPersistenceUnavailable, err)
	}

	good := []string{}
	bad := []string{}
	var okay []string
	for _, e := range entries {
		switch {
		case e.Rating == 5:
			good = append(good, e.PromptText)
		case e.Rating == 4:
			okay = append(okay, e.PromptText)
		case e.Rating <= 2:
			bad = append(bad, e.PromptText)
		}
	}

	s.mu.Lock()
	if len(okay) > maxOkayExamples {
		s.rng.Shuffle(len(okay), func(i, j int) { okay[i], okay[j] = okay[j], okay[i] })
		okay = okay[:maxOkayExamples]
	}
	s.mu.Unlock()

	good = append(good, okay...)
	return good, bad, nil
}
