package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"agri-assistant/internal/domain/port"
)

// ErrEmptyCompletion возвращается, если модель не вернула текста
var ErrEmptyCompletion = errors.New("model returned no text")

// GeminiGenerator генерирует текст через Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// Options настраивают генератор
type Options struct {
	APIKey      string
	Model       string        // например "gemini-pro"
	Temperature float64       // фиксированная температура сэмплирования
	Timeout     time.Duration // 0 означает без ограничения
	BaseURL     string        // пусто для адреса Google по умолчанию
	HTTPClient  *http.Client
}

// NewGeminiGenerator создаёт клиента Gemini API.
func NewGeminiGenerator(ctx context.Context, opts Options) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &GeminiGenerator{
		client:      client,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		timeout:     opts.Timeout,
	}, nil
}

// Generate отправляет промпт одним сообщением пользователя и склеивает части ответа
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := g.temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "generate content")
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", errors.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	if content := resp.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

var _ port.TextGenerator = (*GeminiGenerator)(nil)
