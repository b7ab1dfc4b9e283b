package port

import "context"

// AdvisoryGenerator интерфейс генератора рекомендаций по болезни
type AdvisoryGenerator interface {
	// Advise возвращает рекомендации по болезни в виде HTML
	Advise(ctx context.Context, className string) (string, error)
}

// TextGenerator интерфейс сервиса генерации текста
type TextGenerator interface {
	// Generate возвращает сгенерированный текст для промпта
	Generate(ctx context.Context, prompt string) (string, error)
}

// MarkupRenderer превращает markdown в HTML
type MarkupRenderer interface {
	Render(markdown string) (string, error)
}
