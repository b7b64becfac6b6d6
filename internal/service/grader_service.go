package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/rs/zerolog/log"
)

// AnswerGrader judges the answers of a round.
type AnswerGrader interface {
	Grade(ctx context.Context, promptText string, answers []string) (*model.Result, error)
}

type graderService struct {
	llm      GeminiLLMService
	retrier  *Retrier
	language string
}

func NewGraderService(llm GeminiLLMService, retrier *Retrier, language string) AnswerGrader {
	if language == "" {
		language = "English"
	}
	return &graderService{llm: llm, retrier: retrier, language: language}
}

type gradePayload struct {
	Score   *int `json:"score"`
	Results []struct {
		Answer    string `json:"answer"`
		IsCorrect bool   `json:"is_correct"`
		Reason    string `json:"reason"`
	} `json:"results"`
	Comment string `json:"comment"`
}

func (s *graderService) Grade(ctx context.Context, promptText string, answers []string) (*model.Result, error) {
	prompt, err := composeGradingPrompt(promptText, answers, s.language)
	if err != nil {
		return nil, err
	}

	var result *model.Result
	err = s.retrier.Do(ctx, "grade_answers", func(ctx context.Context) error {
		raw, err := s.llm.GenerateJSON(ctx, GenerationRequest{Prompt: prompt})
		if err != nil {
			return err
		}
		r, err := ParseResult(raw)
		if err != nil {
			log.Warn().Err(err).Str("raw", raw).Msg("Grading response rejected")
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
	}

	if len(result.PerAnswer) != len(answers) {
		log.Warn().Int("answers", len(answers)).Int("verdicts", len(result.PerAnswer)).Msg("Grader returned a different number of verdicts")
	}
	if correct := result.CorrectCount(); correct != result.Score {
		log.Warn().Int("score", result.Score).Int("correct", correct).Msg("Grader score does not match correct verdicts")
	}
	return result, nil
}

// ParseResult decodes a grading response. The reported score is trusted, clamped to [0,5].
func ParseResult(raw string) (*model.Result, error) {
	var payload gradePayload
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("malformed grading JSON: %w", err)
	}
	if payload.Score == nil {
		return nil, fmt.Errorf("grading response has no score")
	}

	score := *payload.Score
	if score < 0 {
		score = 0
	}
	if score > model.AnswerCount {
		score = model.AnswerCount
	}

	result := &model.Result{
		Score:     score,
		Comment:   strings.TrimSpace(payload.Comment),
		PerAnswer: make([]model.AnswerVerdict, 0, len(payload.Results)),
	}
	for _, r := range payload.Results {
		result.PerAnswer = append(result.PerAnswer, model.AnswerVerdict{
			AnswerText: r.Answer,
			IsCorrect:  r.IsCorrect,
			Reason:     r.Reason,
		})
	}
	return result, nil
}

func composeGradingPrompt(promptText string, answers []string, language string) (string, error) {
	list, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("failed to encode answers: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Prompt: %s\n", promptText))
	sb.WriteString(fmt.Sprintf("Answers: %s\n\n", list))
	sb.WriteString("Judge each answer independently (duplicates are judged separately) and reply with JSON only in this shape:\n")
	sb.WriteString(`{"score": number of correct answers (integer), "results": [{"answer": "answer 1", "is_correct": true, "reason": "OK"}, {"answer": "answer 2", "is_correct": false, "reason": "why it is wrong"}], "comment": "short overall comment"}`)
	sb.WriteString("\nInclude exactly one entry in results per answer, in the same order.\n")
	sb.WriteString(fmt.Sprintf("Write every reason and the comment in %s.\n", language))
	return sb.String(), nil
}
