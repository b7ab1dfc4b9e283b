package markup

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"agri-assistant/internal/domain/port"
)

// Renderer превращает markdown ответа модели в HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer создаёт рендерер, который пропускает HTML из ответа модели без изменений.
func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))}
}

func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var _ port.MarkupRenderer = (*Renderer)(nil)
