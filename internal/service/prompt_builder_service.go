package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	maxPreferredExamples = 5
	maxAvoidExamples     = 3
)

// ExampleSource supplies prompts the player liked and disliked.
type ExampleSource interface {
	SampleExamples(ctx context.Context) (good []string, bad []string, err error)
}

// QuestionGenerator produces the prompt of a new round.
type QuestionGenerator interface {
	BuildQuestion(ctx context.Context, settings model.GameSettings) (*model.Question, error)
}

type promptBuilderService struct {
	llm         GeminiLLMService
	examples    ExampleSource
	retrier     *Retrier
	temperature float32
	language    string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPromptBuilderService(llm GeminiLLMService, examples ExampleSource, retrier *Retrier, temperature float32, language string, rng *rand.Rand) QuestionGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if language == "" {
		language = "English"
	}
	return &promptBuilderService{
		llm:         llm,
		examples:    examples,
		retrier:     retrier,
		temperature: temperature,
		language:    language,
		rng:         rng,
	}
}

type questionPayload struct {
	Question string `json:"question"`
	Items    []struct {
		Answer string `json:"answer"`
		Hint   string `json:"hint"`
	} `json:"items"`
}

func (s *promptBuilderService) BuildQuestion(ctx context.Context, settings model.GameSettings) (*model.Question, error) {
	good, bad, err := s.examples.SampleExamples(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Rating examples unavailable, generating without bias")
		good, bad = nil, nil
	}

	var question *model.Question
	err = s.retrier.Do(ctx, "build_question", func(ctx context.Context) error {
		prompt := s.composePrompt(settings, good, bad)
		temperature := s.temperature
		raw, err := s.llm.GenerateJSON(ctx, GenerationRequest{Prompt: prompt, Temperature: &temperature})
		if err != nil {
			return err
		}
		q, err := ParseQuestion(raw)
		if err != nil {
			log.Warn().Err(err).Str("raw", raw).Msg("Question response rejected")
			return err
		}
		question = q
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
	}

	log.Info().Str("genre", settings.Genre).Str("difficulty", string(settings.Difficulty)).Str("prompt", question.PromptText).Msg("Question generated")
	return question, nil
}

// ParseQuestion decodes a generation response into a Question with exactly five answer/hint pairs.
func ParseQuestion(raw string) (*model.Question, error) {
	var payload questionPayload
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("malformed question JSON: %w", err)
	}
	prompt := strings.TrimSpace(payload.Question)
	if prompt == "" {
		return nil, errors.New("question text is empty")
	}
	if len(payload.Items) != model.AnswerCount {
		return nil, fmt.Errorf("expected %d items, got %d", model.AnswerCount, len(payload.Items))
	}

	q := &model.Question{
		PromptText:      prompt,
		ExpectedAnswers: make([]string, 0, model.AnswerCount),
		Hints:           make([]string, 0, model.AnswerCount),
	}
	for i, item := range payload.Items {
		answer := strings.TrimSpace(item.Answer)
		hint := strings.TrimSpace(item.Hint)
		if answer == "" || hint == "" {
			return nil, fmt.Errorf("item %d has an empty answer or hint", i+1)
		}
		q.ExpectedAnswers = append(q.ExpectedAnswers, answer)
		q.Hints = append(q.Hints, hint)
	}
	return q, nil
}

func difficultyInstruction(d model.Difficulty) string {
	switch d {
	case model.DifficultyEasy:
		return "Keep it simple enough that a primary-school child could answer."
	case model.DifficultyHard:
		return "Require real knowledge; make it a little niche or twisted."
	default:
		return "Use a topic everyone knows, where naming five is still a little stressful."
	}
}

func genreInstruction(genre string) string {
	if genre == "" || genre == model.GenreAny {
		return "Any genre is fine; keep the topics varied."
	}
	return fmt.Sprintf("Restrict the topic to the genre %q.", genre)
}

func (s *promptBuilderService) sample(items []string, n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) <= n {
		out := append([]string(nil), items...)
		s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	out := make([]string, 0, n)
	for _, idx := range s.rng.Perm(len(items))[:n] {
		out = append(out, items[idx])
	}
	return out
}

func (s *promptBuilderService) composePrompt(settings model.GameSettings, good, bad []string) string {
	var sb strings.Builder
	sb.WriteString("Create one quiz-show prompt of the form \"Name five ...\".\n")
	sb.WriteString("Also give five example answers, and for each answer a hint (first letter, length or similar) that helps guess it.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Stay close to the preferred prompts and away from the avoided ones.\n")
	sb.WriteString("2. " + genreInstruction(settings.Genre) + "\n")
	sb.WriteString(fmt.Sprintf("3. Difficulty: %s. %s\n", settings.Difficulty, difficultyInstruction(settings.Difficulty)))
	sb.WriteString(fmt.Sprintf("4. Write the prompt, answers and hints in %s.\n", s.language))

	if picks := s.sample(good, maxPreferredExamples); len(picks) > 0 {
		sb.WriteString("\nPrompts the player liked (follow their style):\n")
		for _, p := range picks {
			sb.WriteString("- " + p + "\n")
		}
	}
	if picks := s.sample(bad, maxAvoidExamples); len(picks) > 0 {
		sb.WriteString("\nPrompts the player disliked (avoid these):\n")
		for _, p := range picks {
			sb.WriteString("- " + p + "\n")
		}
	}

	sb.WriteString("\nReply with JSON only, no greeting, exactly in this shape with exactly 5 items:\n")
	sb.WriteString(`{"question": "prompt text", "items": [{"answer": "answer 1", "hint": "hint for answer 1"}, {"answer": "answer 2", "hint": "hint for answer 2"}, {"answer": "answer 3", "hint": "hint for answer 3"}, {"answer": "answer 4", "hint": "hint for answer 4"}, {"answer": "answer 5", "hint": "hint for answer 5"}]}`)
	sb.WriteString("\n")
	return sb.String()
}
