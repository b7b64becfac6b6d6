package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	// HintFloor is the remaining time at or below which hints are no longer offered.
	HintFloor = 10 * time.Second
	// ExplosionDisplay is how long the exploding phase is shown before grading.
	ExplosionDisplay = time.Second
)

// Snapshot is a read-only projection of the session for the presenter.
type Snapshot struct {
	Phase             model.Phase
	Settings          *model.GameSettings
	PromptText        string
	SubmittedAnswers  []string
	RevealedHintCount int
	RevealedHints     []string
	NarrationAsset    string
	NarrationEndsAt   time.Time
	StartedAt         time.Time
	Deadline          time.Time
	Result            *model.Result
	ExpectedAnswers   []string
	Rated             bool
}

// Remaining is the time left at now. Before answering starts it is the whole limit.
func (s Snapshot) Remaining(now time.Time) time.Duration {
	if s.Settings == nil {
		return 0
	}
	if s.Deadline.IsZero() {
		return s.Settings.TimeLimit()
	}
	return s.Deadline.Sub(now)
}

// Outcome is what every action returns: the state after the action and the effects to perform.
type Outcome struct {
	Snapshot Snapshot
	Effects  []Effect
}

// SessionEngine drives a single quiz round through its phases. Timed transitions are detected
// lazily: each action, including Tick, first advances the phase against the clock. Detection may
// lag, but the answering clock always starts at the end of narration.
type SessionEngine struct {
	mu sync.Mutex

	questions QuestionGenerator
	grader    AnswerGrader
	ratings   RatingRecorder
	narrator  Narrator
	clock     Clock
	language  string

	phase           model.Phase
	round           *model.Round
	narrationAsset  string
	narrationEndsAt time.Time
	explodeEndsAt   time.Time
	result          *model.Result
	rated           bool
}

func NewSessionEngine(questions QuestionGenerator, grader AnswerGrader, ratings RatingRecorder, narrator Narrator, clock Clock, narrationLanguage string) *SessionEngine {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &SessionEngine{
		questions: questions,
		grader:    grader,
		ratings:   ratings,
		narrator:  narrator,
		clock:     clock,
		language:  narrationLanguage,
		phase:     model.PhaseIdle,
	}
}

func (e *SessionEngine) Clock() Clock {
	return e.clock
}

func (e *SessionEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Start generates a question and opens a new round. On failure the engine is back in idle with no round.
func (e *SessionEngine) Start(ctx context.Context, settings model.GameSettings) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseIdle {
		return e.outcome(nil), fmt.Errorf("%w: cannot start a round while %s", model.ErrInvalidAction, e.phase)
	}
	if err := settings.Validate(); err != nil {
		return e.outcome(nil), err
	}

	e.setPhase(model.PhaseAwaitingQuestion)
	question, err := e.questions.BuildQuestion(ctx, settings)
	if err != nil {
		e.setPhase(model.PhaseIdle)
		log.Error().Err(err).Str("genre", settings.Genre).Msg("Could not start round")
		if !errors.Is(err, model.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
		}
		return e.outcome(nil), err
	}

	effects := []Effect{playSound(SoundStart)}
	asset := e.narrate(ctx, question.PromptText)
	now := e.clock.Now()

	e.round = &model.Round{
		Settings:         settings,
		Question:         *question,
		SubmittedAnswers: []string{},
	}
	e.narrationAsset = asset
	e.narrationEndsAt = now
	if asset != "" {
		e.narrationEndsAt = now.Add(NarrationDuration(question.PromptText))
		effects = append(effects, Effect{Kind: EffectStartNarration, Text: question.PromptText, Asset: asset})
	}
	e.explodeEndsAt = time.Time{}
	e.result = nil
	e.rated = false
	e.setPhase(model.PhaseNarrating)

	return e.outcome(effects), nil
}

// narrate returns the audio handle, or "" when narration is skipped.
func (e *SessionEngine) narrate(ctx context.Context, text string) string {
	if e.narrator == nil {
		return ""
	}
	asset, err := e.narrator.Synthesize(ctx, text, e.language)
	if err != nil {
		if !errors.Is(err, ErrNarrationDisabled) {
			log.Warn().Err(err).Msg("Narration skipped")
		}
		return ""
	}
	return asset
}

// Tick observes the clock without any other input.
func (e *SessionEngine) Tick() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome(e.advance(e.clock.Now()))
}

func (e *SessionEngine) SubmitAnswer(text string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.phase
	effects := e.advance(e.clock.Now())
	if expiredDuring(before, e.phase) {
		return e.outcome(effects), model.ErrTimeUp
	}
	if e.phase != model.PhaseAnswering {
		return e.outcome(effects), fmt.Errorf("%w: answers are not accepted while %s", model.ErrInvalidAction, e.phase)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return e.outcome(effects), fmt.Errorf("%w: empty answer", model.ErrInvalidAction)
	}
	if len(e.round.SubmittedAnswers) >= model.AnswerCount {
		return e.outcome(effects), fmt.Errorf("%w: all answers already submitted", model.ErrInvalidAction)
	}

	e.round.SubmittedAnswers = append(e.round.SubmittedAnswers, text)
	if len(e.round.SubmittedAnswers) == model.AnswerCount {
		e.setPhase(model.PhaseGrading)
	}
	return e.outcome(effects), nil
}

func (e *SessionEngine) RevealHint() (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	before := e.phase
	effects := e.advance(now)
	if expiredDuring(before, e.phase) {
		return e.outcome(effects), model.ErrTimeUp
	}
	if e.phase != model.PhaseAnswering {
		return e.outcome(effects), fmt.Errorf("%w: hints are not available while %s", model.ErrInvalidAction, e.phase)
	}

	r := e.round
	if r.RevealedHintCount >= model.AnswerCount || r.RevealedHintCount >= len(r.Question.Hints) {
		return e.outcome(effects), fmt.Errorf("%w: no hints left", model.ErrInvalidAction)
	}
	if r.Remaining(now) <= HintFloor {
		return e.outcome(effects), fmt.Errorf("%w: too late for a hint", model.ErrInvalidAction)
	}

	r.RevealedHintCount++
	effects = append(effects, Effect{Kind: EffectShowHint, Text: r.Question.Hints[r.RevealedHintCount-1]})
	return e.outcome(effects), nil
}

// Finish grades the collected answers. A failed grading leaves the round in grading so it can be retried.
func (e *SessionEngine) Finish(ctx context.Context) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	effects := e.advance(e.clock.Now())
	if e.phase != model.PhaseGrading {
		return e.outcome(effects), fmt.Errorf("%w: nothing to grade while %s", model.ErrInvalidAction, e.phase)
	}

	answers := make([]string, len(e.round.SubmittedAnswers))
	copy(answers, e.round.SubmittedAnswers)
	result, err := e.grader.Grade(ctx, e.round.Question.PromptText, answers)
	if err != nil {
		log.Error().Err(err).Int("answers", len(answers)).Msg("Grading failed")
		if !errors.Is(err, model.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
		}
		return e.outcome(effects), err
	}

	e.result = result
	e.setPhase(model.PhaseResult)
	effects = append(effects, resultEffects(result.Score)...)
	return e.outcome(effects), nil
}

// SubmitRating records the player's rating once per round. Later calls report ErrAlreadySubmitted.
// A failed write still counts as the round's rating.
func (e *SessionEngine) SubmitRating(ctx context.Context, rating int) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseResult {
		return e.outcome(nil), fmt.Errorf("%w: ratings are only accepted on the result screen", model.ErrInvalidAction)
	}
	if e.rated {
		return e.outcome(nil), model.ErrAlreadySubmitted
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return e.outcome(nil), fmt.Errorf("%w: rating %d outside [%d,%d]", model.ErrInvalidAction, rating, model.MinRating, model.MaxRating)
	}

	e.rated = true
	if err := e.ratings.Record(ctx, e.round.Question.PromptText, rating); err != nil {
		if !errors.Is(err, model.ErrPersistenceUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrPersistenceUnavailable, err)
		}
		return e.outcome(nil), err
	}
	return e.outcome(nil), nil
}

// Next discards the finished round.
func (e *SessionEngine) Next() (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseResult {
		return e.outcome(nil), fmt.Errorf("%w: the round is not finished", model.ErrInvalidAction)
	}
	e.round = nil
	e.result = nil
	e.rated = false
	e.narrationAsset = ""
	e.narrationEndsAt = time.Time{}
	e.explodeEndsAt = time.Time{}
	e.setPhase(model.PhaseIdle)
	return e.outcome(nil), nil
}

func (e *SessionEngine) advance(now time.Time) []Effect {
	var effects []Effect
	if e.phase == model.PhaseNarrating && !now.Before(e.narrationEndsAt) {
		e.round.StartedAt = e.narrationEndsAt
		e.setPhase(model.PhaseAnswering)
	}
	if e.phase == model.PhaseAnswering && e.round.Remaining(now) <= 0 {
		e.explodeEndsAt = now.Add(ExplosionDisplay)
		e.setPhase(model.PhaseExploding)
		effects = append(effects, playSound(SoundExplosion))
	}
	if e.phase == model.PhaseExploding && !now.Before(e.explodeEndsAt) {
		e.setPhase(model.PhaseGrading)
	}
	return effects
}

// expiredDuring reports whether the clock ran out while the current action advanced the round.
func expiredDuring(before, after model.Phase) bool {
	return before != model.PhaseExploding && after == model.PhaseExploding
}

func (e *SessionEngine) setPhase(p model.Phase) {
	if e.phase != p {
		log.Debug().Str("from", string(e.phase)).Str("to", string(p)).Msg("Phase transition")
	}
	e.phase = p
	if e.round != nil {
		e.round.Phase = p
	}
}

func (e *SessionEngine) outcome(effects []Effect) Outcome {
	return Outcome{Snapshot: e.snapshot(), Effects: effects}
}

func (e *SessionEngine) snapshot() Snapshot {
	s := Snapshot{Phase: e.phase, Rated: e.rated}
	if e.round == nil {
		return s
	}
	settings := e.round.Settings
	s.Settings = &settings
	s.PromptText = e.round.Question.PromptText
	s.SubmittedAnswers = append([]string{}, e.round.SubmittedAnswers...)
	s.RevealedHintCount = e.round.RevealedHintCount
	s.RevealedHints = e.round.RevealedHints()
	s.NarrationAsset = e.narrationAsset
	s.NarrationEndsAt = e.narrationEndsAt
	s.StartedAt = e.round.StartedAt
	if e.round.Started() {
		s.Deadline = e.round.StartedAt.Add(settings.TimeLimit())
	}
	if e.result != nil {
		r := e.result.Clone()
		s.Result = &r
		s.ExpectedAnswers = append([]string{}, e.round.Question.ExpectedAnswers...)
	}
	return s
}
