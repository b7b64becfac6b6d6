package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lshigami/QuizBomber/config"
	"github.com/rs/zerolog/log"
)

const (
	ttsChunkRunes = 100

	NarrationStartupDelay = 500 * time.Millisecond
	NarrationPerRune      = 250 * time.Millisecond
	NarrationTail         = time.Second
)

var ErrNarrationDisabled = errors.New("narration disabled")

// Narrator turns prompt text into a playable audio asset and returns its public handle.
type Narrator interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}

// NarrationDuration estimates how long reading text aloud takes.
func NarrationDuration(text string) time.Duration {
	n := len([]rune(text))
	return NarrationStartupDelay + time.Duration(n)*NarrationPerRune + NarrationTail
}

type translateTTSNarrator struct {
	enabled    bool
	endpoint   string
	audioDir   string
	publicPath string
	httpClient *http.Client
}

func NewNarratorService(cfg *config.Config) Narrator {
	return NewTranslateTTSNarrator(cfg.TTS, &http.Client{Timeout: 15 * time.Second})
}

func NewTranslateTTSNarrator(cfg config.TTS, client *http.Client) Narrator {
	if client == nil {
		client = http.DefaultClient
	}
	return &translateTTSNarrator{
		enabled:    cfg.Enabled,
		endpoint:   cfg.Endpoint,
		audioDir:   cfg.AudioDir,
		publicPath: strings.TrimRight(cfg.PublicPath, "/"),
		httpClient: client,
	}
}

func (n *translateTTSNarrator) Synthesize(ctx context.Context, text, language string) (string, error) {
	if !n.enabled {
		return "", ErrNarrationDisabled
	}
	chunks := splitForTTS(text, ttsChunkRunes)
	if len(chunks) == 0 {
		return "", errors.New("nothing to narrate")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := n.fetchChunk(ctx, &audio, chunk, language, i, len(chunks)); err != nil {
			log.Warn().Err(err).Int("chunk", i).Msg("Text-to-speech request failed")
			return "", err
		}
	}

	if err := os.MkdirAll(n.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	name := uuid.NewString() + ".mp3"
	if err := os.WriteFile(filepath.Join(n.audioDir, name), audio.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write narration audio: %w", err)
	}
	return path.Join(n.publicPath, name), nil
}

func (n *translateTTSNarrator) fetchChunk(ctx context.Context, dst io.Writer, chunk, language string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", language)
	q.Set("q", chunk)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(len([]rune(chunk))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build TTS request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TTS endpoint returned status %d", resp.StatusCode)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to read TTS audio: %w", err)
	}
	return nil
}

// splitForTTS cuts text into pieces of at most limit runes, preferring to break after spaces or punctuation.
func splitForTTS(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := limit
		for i := limit; i > limit/2; i-- {
			if unicode.IsSpace(runes[i-1]) || unicode.IsPunct(runes[i-1]) {
				cut = i
				break
			}
		}
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			chunks = append(chunks, piece)
		}
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	return chunks
}
