package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/QuizBomber/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GenerationRequest is one call to the generation API. Responses are always requested as JSON.
type GenerationRequest struct {
	Prompt      string
	Temperature *float32
}

type GeminiLLMService interface {
	GenerateJSON(ctx context.Context, req GenerationRequest) (string, error)
	Close() error
}

type geminiLLMService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.LLM.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{modelName: cfg.LLM.Model}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.LLM.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{client: client, modelName: cfg.LLM.Model}, nil
}

func (s *geminiLLMService) GenerateJSON(ctx context.Context, req GenerationRequest) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	// Generation settings are per request.
	m := s.client.GenerativeModel(s.modelName)
	m.ResponseMIMEType = "application/json"
	if req.Temperature != nil {
		m.SetTemperature(*req.Temperature)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		log.Error().Err(err).Str("model", s.modelName).Msg("Gemini API error")
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	text := StripCodeFence(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}

func (s *geminiLLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripCodeFence removes a ```json / ``` wrapper around a model response.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
