package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lshigami/QuizBomber/internal/mocks"
	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/lshigami/QuizBomber/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine    *service.SessionEngine
	clock     *fakeClock
	questions *mocks.MockQuestionGenerator
	grader    *mocks.MockAnswerGrader
	ratings   *mocks.MockRatingStore
	narrator  *mocks.MockNarrator
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		clock:     newFakeClock(),
		questions: mocks.NewMockQuestionGenerator(t),
		grader:    mocks.NewMockAnswerGrader(t),
		ratings:   mocks.NewMockRatingStore(t),
		narrator:  mocks.NewMockNarrator(t),
	}
	f.engine = service.NewSessionEngine(f.questions, f.grader, f.ratings, f.narrator, f.clock, "en")
	return f
}

func sampleQuestion() *model.Question {
	return &model.Question{
		PromptText:      "Name five planets",
		ExpectedAnswers: []string{"Mercury", "Venus", "Earth", "Mars", "Jupiter"},
		Hints:           []string{"Closest to the sun", "Hottest", "Home", "Red", "Largest"},
	}
}

func settingsWithLimit(seconds int) model.GameSettings {
	s := model.DefaultSettings()
	s.TimeLimitSeconds = seconds
	return s
}

// startAnswering starts a round without narration and ticks it into answering.
func (f *engineFixture) startAnswering(t *testing.T, settings model.GameSettings) {
	t.Helper()
	f.questions.On("BuildQuestion", mock.Anything, settings).Return(sampleQuestion(), nil).Once()
	f.narrator.On("Synthesize", mock.Anything, "Name five planets", "en").Return("", service.ErrNarrationDisabled).Once()

	_, err := f.engine.Start(context.Background(), settings)
	require.NoError(t, err)
	out := f.engine.Tick()
	require.Equal(t, model.PhaseAnswering, out.Snapshot.Phase)
}

func (f *engineFixture) answerAll(t *testing.T) {
	t.Helper()
	for _, a := range []string{"Mercury", "Venus", "Earth", "Mars", "Pluto"} {
		_, err := f.engine.SubmitAnswer(a)
		require.NoError(t, err)
	}
}

func (f *engineFixture) finishWithScore(t *testing.T, score int) service.Outcome {
	t.Helper()
	f.grader.On("Grade", mock.Anything, "Name five planets", mock.Anything).
		Return(&model.Result{Score: score, Comment: "ok"}, nil).Once()
	out, err := f.engine.Finish(context.Background())
	require.NoError(t, err)
	return out
}

func hasSound(effects []service.Effect, sound string) bool {
	for _, e := range effects {
		if e.Kind == service.EffectPlaySound && e.Sound == sound {
			return true
		}
	}
	return false
}

func TestEngine_StartsIdle(t *testing.T) {
	f := newEngineFixture(t)
	snap := f.engine.Snapshot()
	assert.Equal(t, model.PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Settings)
}

func TestEngine_NarrationExcludedFromTimer(t *testing.T) {
	f := newEngineFixture(t)
	settings := settingsWithLimit(30)
	f.questions.On("BuildQuestion", mock.Anything, settings).Return(sampleQuestion(), nil).Once()
	f.narrator.On("Synthesize", mock.Anything, "Name five planets", "en").Return("/audio/q.mp3", nil).Once()

	out, err := f.engine.Start(context.Background(), settings)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseNarrating, out.Snapshot.Phase)
	assert.Equal(t, "/audio/q.mp3", out.Snapshot.NarrationAsset)
	assert.True(t, hasSound(out.Effects, service.SoundStart))
	assert.Contains(t, out.Effects, service.Effect{Kind: service.EffectStartNarration, Text: "Name five planets", Asset: "/audio/q.mp3"})

	narration := service.NarrationDuration("Name five planets")
	f.clock.Advance(narration - time.Millisecond)
	out = f.engine.Tick()
	assert.Equal(t, model.PhaseNarrating, out.Snapshot.Phase)
	assert.Equal(t, 30*time.Second, out.Snapshot.Remaining(f.clock.Now()))

	_, err = f.engine.SubmitAnswer("Mars")
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	f.clock.Advance(time.Millisecond)
	out = f.engine.Tick()
	assert.Equal(t, model.PhaseAnswering, out.Snapshot.Phase)
	assert.Equal(t, f.clock.Now(), out.Snapshot.StartedAt)
	assert.Equal(t, 30*time.Second, out.Snapshot.Remaining(f.clock.Now()))
}

func TestEngine_NarrationFailureStartsImmediately(t *testing.T) {
	f := newEngineFixture(t)
	settings := model.DefaultSettings()
	f.questions.On("BuildQuestion", mock.Anything, settings).Return(sampleQuestion(), nil).Once()
	f.narrator.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("tts down")).Once()

	out, err := f.engine.Start(context.Background(), settings)
	require.NoError(t, err)
	assert.Empty(t, out.Snapshot.NarrationAsset)
	for _, e := range out.Effects {
		assert.NotEqual(t, service.EffectStartNarration, e.Kind)
	}

	_, err = f.engine.SubmitAnswer("Mars")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mars"}, f.engine.Snapshot().SubmittedAnswers)
}

func TestEngine_ExpiryRejectsLateAnswer(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, settingsWithLimit(20))

	_, err := f.engine.SubmitAnswer("Mercury")
	require.NoError(t, err)

	f.clock.Advance(20 * time.Second)
	out, err := f.engine.SubmitAnswer("Venus")

	assert.ErrorIs(t, err, model.ErrTimeUp)
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Equal(t, model.PhaseExploding, out.Snapshot.Phase)
	assert.Equal(t, []string{"Mercury"}, out.Snapshot.SubmittedAnswers)
	assert.True(t, hasSound(out.Effects, service.SoundExplosion))

	out = f.engine.Tick()
	assert.Equal(t, model.PhaseExploding, out.Snapshot.Phase)
	assert.Empty(t, out.Effects)

	_, err = f.engine.SubmitAnswer("Earth")
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.NotErrorIs(t, err, model.ErrTimeUp)
	_, err = f.engine.RevealHint()
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.NotErrorIs(t, err, model.ErrTimeUp)
	assert.Equal(t, []string{"Mercury"}, f.engine.Snapshot().SubmittedAnswers)
	assert.Equal(t, 0, f.engine.Snapshot().RevealedHintCount)

	f.clock.Advance(service.ExplosionDisplay)
	out = f.engine.Tick()
	assert.Equal(t, model.PhaseGrading, out.Snapshot.Phase)
}

func TestEngine_ExpiryWithNoAnswersGradesEmptyList(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, settingsWithLimit(20))

	f.clock.Advance(21 * time.Second)
	out := f.engine.Tick()
	assert.Equal(t, model.PhaseExploding, out.Snapshot.Phase)
	f.clock.Advance(time.Second)

	f.grader.On("Grade", mock.Anything, "Name five planets", []string{}).
		Return(&model.Result{Score: 0, PerAnswer: []model.AnswerVerdict{}}, nil).Once()
	out, err := f.engine.Finish(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.PhaseResult, out.Snapshot.Phase)
	assert.True(t, hasSound(out.Effects, service.SoundMiss))
}

func TestEngine_FiveAnswersEndAnswering(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())

	_, err := f.engine.SubmitAnswer("   ")
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	f.answerAll(t)
	snap := f.engine.Snapshot()
	assert.Equal(t, model.PhaseGrading, snap.Phase)
	assert.Len(t, snap.SubmittedAnswers, model.AnswerCount)

	_, err = f.engine.SubmitAnswer("Saturn")
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Len(t, f.engine.Snapshot().SubmittedAnswers, model.AnswerCount)

	out, err := f.engine.RevealHint()
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Equal(t, 0, out.Snapshot.RevealedHintCount)
	assert.Empty(t, out.Effects)
}

func TestEngine_HintGating(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, settingsWithLimit(30))

	out, err := f.engine.RevealHint()
	require.NoError(t, err)
	assert.Equal(t, 1, out.Snapshot.RevealedHintCount)
	assert.Equal(t, []string{"Closest to the sun"}, out.Snapshot.RevealedHints)
	assert.Contains(t, out.Effects, service.Effect{Kind: service.EffectShowHint, Text: "Closest to the sun"})

	f.clock.Advance(19 * time.Second)
	_, err = f.engine.RevealHint()
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	out, err = f.engine.RevealHint()
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Equal(t, 2, out.Snapshot.RevealedHintCount)
}

func TestEngine_AtMostFiveHints(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())

	for i := 0; i < model.AnswerCount; i++ {
		_, err := f.engine.RevealHint()
		require.NoError(t, err)
	}
	out, err := f.engine.RevealHint()

	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Equal(t, model.AnswerCount, out.Snapshot.RevealedHintCount)
	assert.Equal(t, sampleQuestion().Hints, out.Snapshot.RevealedHints)
}

func TestEngine_GradingFailureCanBeRetried(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())
	f.answerAll(t)

	f.grader.On("Grade", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, model.ErrGenerationFailed).Once()
	out, err := f.engine.Finish(context.Background())
	assert.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, model.PhaseGrading, out.Snapshot.Phase)
	assert.Nil(t, out.Snapshot.Result)

	out = f.finishWithScore(t, 4)
	assert.Equal(t, model.PhaseResult, out.Snapshot.Phase)
	assert.True(t, hasSound(out.Effects, service.SoundGreat))
}

func TestEngine_ResultEffectsOnce(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())
	f.answerAll(t)

	out := f.finishWithScore(t, 5)
	assert.True(t, hasSound(out.Effects, service.SoundPerfect))
	assert.Contains(t, out.Effects, service.Effect{Kind: service.EffectCelebrate})
	assert.Equal(t, 5, out.Snapshot.Result.Score)
	assert.Equal(t, sampleQuestion().ExpectedAnswers, out.Snapshot.ExpectedAnswers)

	out, err := f.engine.Finish(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Empty(t, out.Effects)
	assert.Empty(t, f.engine.Tick().Effects)
	f.grader.AssertNumberOfCalls(t, "Grade", 1)
}

func TestEngine_ExpectedAnswersHiddenUntilResult(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())
	assert.Empty(t, f.engine.Snapshot().ExpectedAnswers)
	f.answerAll(t)
	assert.Empty(t, f.engine.Snapshot().ExpectedAnswers)
}

func TestEngine_RatingOncePerRound(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())
	f.answerAll(t)
	f.finishWithScore(t, 3)

	f.ratings.On("Record", mock.Anything, "Name five planets", 4).Return(nil).Once()
	out, err := f.engine.SubmitRating(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, out.Snapshot.Rated)

	_, err = f.engine.SubmitRating(context.Background(), 2)
	assert.ErrorIs(t, err, model.ErrAlreadySubmitted)
	f.ratings.AssertNumberOfCalls(t, "Record", 1)
}

func TestEngine_RatingValidation(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.SubmitRating(context.Background(), 3)
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	f.startAnswering(t, model.DefaultSettings())
	f.answerAll(t)
	f.finishWithScore(t, 1)

	out, err := f.engine.SubmitRating(context.Background(), 6)
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.False(t, out.Snapshot.Rated)
	f.ratings.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_RatingPersistenceFailureStillCounts(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())
	f.answerAll(t)
	f.finishWithScore(t, 2)

	f.ratings.On("Record", mock.Anything, mock.Anything, 5).Return(errors.New("sheet locked")).Once()
	out, err := f.engine.SubmitRating(context.Background(), 5)
	assert.ErrorIs(t, err, model.ErrPersistenceUnavailable)
	assert.True(t, out.Snapshot.Rated)

	_, err = f.engine.SubmitRating(context.Background(), 5)
	assert.ErrorIs(t, err, model.ErrAlreadySubmitted)
}

func TestEngine_SnapshotIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, model.DefaultSettings())
	_, err := f.engine.SubmitAnswer("Mars")
	require.NoError(t, err)

	first := f.engine.Snapshot()
	f.clock.Advance(5 * time.Second)
	second := f.engine.Snapshot()
	assert.Equal(t, first, second)

	first.SubmittedAnswers[0] = "tampered"
	assert.Equal(t, []string{"Mars"}, f.engine.Snapshot().SubmittedAnswers)
}

func TestEngine_StartFailureReturnsToIdle(t *testing.T) {
	f := newEngineFixture(t)
	before := f.engine.Snapshot()
	settings := model.DefaultSettings()
	f.questions.On("BuildQuestion", mock.Anything, settings).Return(nil, model.ErrGenerationFailed).Once()

	out, err := f.engine.Start(context.Background(), settings)

	assert.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, model.PhaseIdle, out.Snapshot.Phase)
	assert.Equal(t, before, f.engine.Snapshot())
	f.narrator.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything, mock.Anything)

	f.startAnswering(t, settings)
}

func TestEngine_StartValidation(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Start(context.Background(), settingsWithLimit(10))
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	_, err = f.engine.Start(context.Background(), model.GameSettings{Genre: "Opera", Difficulty: model.DifficultyEasy, TimeLimitSeconds: 60})
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	f.questions.AssertNotCalled(t, "BuildQuestion", mock.Anything, mock.Anything)

	f.startAnswering(t, model.DefaultSettings())
	_, err = f.engine.Start(context.Background(), model.DefaultSettings())
	assert.ErrorIs(t, err, model.ErrInvalidAction)
}

func TestEngine_NextReturnsToIdle(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.Next()
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	f.startAnswering(t, model.DefaultSettings())
	f.answerAll(t)
	f.finishWithScore(t, 3)

	out, err := f.engine.Next()
	require.NoError(t, err)
	assert.Equal(t, model.PhaseIdle, out.Snapshot.Phase)
	assert.Empty(t, out.Snapshot.PromptText)
	assert.False(t, out.Snapshot.Rated)

	f.startAnswering(t, model.DefaultSettings())
}

func TestEngine_FifthAnswerBeatsTimer(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, settingsWithLimit(20))

	for _, a := range []string{"Mercury", "Venus", "Earth", "Mars"} {
		_, err := f.engine.SubmitAnswer(a)
		require.NoError(t, err)
	}
	f.clock.Advance(17 * time.Second)
	out, err := f.engine.SubmitAnswer("Jupiter")

	require.NoError(t, err)
	assert.Equal(t, model.PhaseGrading, out.Snapshot.Phase)
	assert.False(t, hasSound(out.Effects, service.SoundExplosion))
}

func TestEngine_ExpiryWithPartialAnswers(t *testing.T) {
	f := newEngineFixture(t)
	f.startAnswering(t, settingsWithLimit(25))

	for _, a := range []string{"Mercury", "Venus"} {
		_, err := f.engine.SubmitAnswer(a)
		require.NoError(t, err)
	}
	f.clock.Advance(30 * time.Second)
	out, err := f.engine.SubmitAnswer("Earth")

	assert.ErrorIs(t, err, model.ErrInvalidAction)
	assert.Equal(t, model.PhaseExploding, out.Snapshot.Phase)
	assert.Equal(t, []string{"Mercury", "Venus"}, out.Snapshot.SubmittedAnswers)
}

func TestEngine_SettingsUnchangedThroughRound(t *testing.T) {
	f := newEngineFixture(t)
	settings := model.GameSettings{Genre: "Geography", Difficulty: model.DifficultyEasy, TimeLimitSeconds: 100}
	f.startAnswering(t, settings)

	_, err := f.engine.RevealHint()
	require.NoError(t, err)
	assert.Equal(t, settings, *f.engine.Snapshot().Settings)

	f.answerAll(t)
	out := f.finishWithScore(t, 3)
	assert.Equal(t, settings, *out.Snapshot.Settings)
}

func TestEngine_TimerStartsWhenNarrationEnds(t *testing.T) {
	f := newEngineFixture(t)
	settings := settingsWithLimit(20)
	f.questions.On("BuildQuestion", mock.Anything, settings).Return(sampleQuestion(), nil).Once()
	f.narrator.On("Synthesize", mock.Anything, "Name five planets", "en").Return("/audio/q.mp3", nil).Once()

	out, err := f.engine.Start(context.Background(), settings)
	require.NoError(t, err)
	narrationEnd := out.Snapshot.NarrationEndsAt

	f.clock.Advance(service.NarrationDuration("Name five planets") + 60*time.Second)
	out, err = f.engine.SubmitAnswer("Mars")

	assert.ErrorIs(t, err, model.ErrTimeUp)
	assert.Equal(t, model.PhaseExploding, out.Snapshot.Phase)
	assert.Equal(t, narrationEnd, out.Snapshot.StartedAt)
	assert.Empty(t, out.Snapshot.SubmittedAnswers)
	assert.True(t, hasSound(out.Effects, service.SoundExplosion))
}

func TestEngine_LateTickKeepsNarrationEndAsStart(t *testing.T) {
	f := newEngineFixture(t)
	settings := settingsWithLimit(30)
	f.questions.On("BuildQuestion", mock.Anything, settings).Return(sampleQuestion(), nil).Once()
	f.narrator.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).Return("/audio/q.mp3", nil).Once()

	out, err := f.engine.Start(context.Background(), settings)
	require.NoError(t, err)
	narrationEnd := out.Snapshot.NarrationEndsAt

	f.clock.Advance(service.NarrationDuration("Name five planets") + 12*time.Second)
	out = f.engine.Tick()

	assert.Equal(t, model.PhaseAnswering, out.Snapshot.Phase)
	assert.Equal(t, narrationEnd, out.Snapshot.StartedAt)
	assert.Equal(t, 18*time.Second, out.Snapshot.Remaining(f.clock.Now()))
}
