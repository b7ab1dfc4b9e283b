package app

import (
	"context"
	"errors"

	"agri-assistant/internal/domain/port"
)

// AdvisoryService генерирует рекомендации по лечению и профилактике болезни.
type AdvisoryService struct {
	generator port.TextGenerator
	renderer  port.MarkupRenderer
}

// NewAdvisoryService создаёт сервис рекомендаций.
func NewAdvisoryService(generator port.TextGenerator, renderer port.MarkupRenderer) *AdvisoryService {
	return &AdvisoryService{
		generator: generator,
		renderer:  renderer,
	}
}

// Advise запрашивает у генератора текст по болезни и возвращает его в HTML.
// На каждый вызов уходит отдельный запрос к генератору, ответы не кэшируются.
func (s *AdvisoryService) Advise(ctx context.Context, className string) (string, error) {
	if s.generator == nil {
		return "", errors.New("text generator is not configured")
	}

	prompt, err := renderPrompt(advisoryTemplate, promptData{Disease: className})
	if err != nil {
		return "", err
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	return s.renderer.Render(text)
}

var _ port.AdvisoryGenerator = (*AdvisoryService)(nil)
