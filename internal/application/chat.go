package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// ChatService отвечает на вопросы о сельском хозяйстве.
type ChatService struct {
	generator port.TextGenerator
	renderer  port.MarkupRenderer
	log       logrus.FieldLogger
}

// NewChatService создаёт сервис чата.
func NewChatService(generator port.TextGenerator, renderer port.MarkupRenderer, log logrus.FieldLogger) *ChatService {
	return &ChatService{
		generator: generator,
		renderer:  renderer,
		log:       log,
	}
}

// Ask отвечает на вопрос. Любая ошибка генерации превращается в ответ со статусом 500.
func (s *ChatService) Ask(ctx context.Context, question string) *entity.ChatReply {
	question = strings.TrimSpace(question)
	if question == "" {
		return &entity.ChatReply{Response: entity.ChatAnswer{
			Status: http.StatusBadRequest,
			Error:  entity.MsgInvalidQuestion,
		}}
	}

	answer, err := s.answer(ctx, question)
	if err != nil {
		s.log.WithError(err).Error("an unexpected error occurred")
		return &entity.ChatReply{Response: entity.ChatAnswer{
			Status: http.StatusInternalServerError,
			Error:  entity.MsgSomethingWrong,
		}}
	}

	return &entity.ChatReply{Response: entity.ChatAnswer{
		Status:   http.StatusOK,
		Question: question,
		Response: answer,
	}}
}

func (s *ChatService) answer(ctx context.Context, question string) (string, error) {
	if s.generator == nil {
		return "", errors.New("text generator is not configured")
	}

	intent := entity.ClassifyQuestion(question)
	s.log.WithField("intent", intent.String()).Debug("question classified")

	prompt, err := renderPrompt(selectChatTemplate(intent), promptData{Query: question})
	if err != nil {
		return "", err
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	return s.renderer.Render(text)
}
