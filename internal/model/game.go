package model

import (
	"fmt"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

const (
	GenreAny         = "Any"
	MinTimeLimit     = 20
	MaxTimeLimit     = 100
	DefaultTimeLimit = 60
)

// Genres lists the selectable genres in display order.
var Genres = []string{
	GenreAny,
	"Anime & Manga",
	"History",
	"Geography",
	"Science & IT",
	"Food & Cooking",
	"Sports",
	"Language & Words",
}

var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

type GameSettings struct {
	Genre            string     `json:"genre"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
}

func DefaultSettings() GameSettings {
	return GameSettings{Genre: GenreAny, Difficulty: DifficultyNormal, TimeLimitSeconds: DefaultTimeLimit}
}

func (s GameSettings) TimeLimit() time.Duration {
	return time.Duration(s.TimeLimitSeconds) * time.Second
}

func (s GameSettings) Validate() error {
	knownGenre := false
	for _, g := range Genres {
		if g == s.Genre {
			knownGenre = true
			break
		}
	}
	if !knownGenre {
		return fmt.Errorf("%w: unknown genre %q", ErrInvalidAction, s.Genre)
	}
	switch s.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidAction, s.Difficulty)
	}
	if s.TimeLimitSeconds < MinTimeLimit || s.TimeLimitSeconds > MaxTimeLimit {
		return fmt.Errorf("%w: time limit %ds outside [%d,%d]", ErrInvalidAction, s.TimeLimitSeconds, MinTimeLimit, MaxTimeLimit)
	}
	return nil
}
