package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	app "agri-assistant/internal/application"
	"agri-assistant/internal/domain/entity"
)

const (
	msgStart = `🙏 नमस्ते! म बालीका रोग पहिचान गर्ने सहायक हुँ।

📸 /check पठाएपछि बिरुवाको पातको फोटो पठाउनुहोस्, म रोग पहिचान गरेर उपचारको सुझाव दिन्छु।
💬 खेतीसम्बन्धी प्रश्न पनि सोध्न सक्नुहुन्छ।

📋 आदेशहरू:
/check — फोटो जाँच सुरु गर्नुहोस्
/help — सहायता
/cancel — रद्द गर्नुहोस्`

	msgHelp = `ℹ️ प्रयोग गर्ने तरिका:

1️⃣ /check पठाएर बिरुवाको फोटो पठाउनुहोस्
2️⃣ बोटले फोटोमा रोग खोज्छ
3️⃣ हरेक रोगका लागि उपचार र रोकथामका सुझाव पाउनुहुन्छ

💡 सुझाव:
• राम्रो उज्यालोमा फोटो खिच्नुहोस्
• रोग लागेको पात नजिकबाट खिच्नुहोस्

📋 आदेशहरू:
/check — जाँच सुरु गर्नुहोस्
/cancel — रद्द गर्नुहोस्`

	msgAwaitingPhoto   = "📸 जाँचका लागि बिरुवाको फोटो पठाउनुहोस्।"
	msgCancelled       = "❌ रद्द गरियो। नयाँ जाँचका लागि /check पठाउनुहोस्।"
	msgUnknownCommand  = "❓ अज्ञात आदेश। सहायताका लागि /help प्रयोग गर्नुहोस्।"
	msgProcessing      = "⏳ फोटो जाँच गर्दैछु..."
	msgBusy            = "⏳ अघिल्लो फोटो अझै जाँच हुँदैछ, कृपया पर्खनुहोस्।"
	msgCheckFirst      = "📋 फोटो जाँचका लागि पहिले /check पठाउनुहोस्।"
	msgNoDisease       = "✅ कुनै रोग पहिचान भएन।"
	msgProcessingError = "⚠️ फोटो जाँच गर्न सकिएन। कृपया अर्को फोटो पठाउनुहोस्।"
)

// Diagnoser проводит фото через конвейер диагностики
type Diagnoser interface {
	Diagnose(ctx context.Context, image *entity.UploadedImage) (*entity.Diagnosis, error)
}

// Chatter отвечает на текстовые вопросы
type Chatter interface {
	Ask(ctx context.Context, question string) *entity.ChatReply
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	users     *app.UserService
	diagnoser Diagnoser
	chatter   Chatter
	log       logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, diagnoser Diagnoser, chatter Chatter, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "authorize telegram bot")
	}

	log.WithField("account", api.Self.UserName).Info("telegram bot authorized")

	return &Bot{
		api:       api,
		users:     users,
		diagnoser: diagnoser,
		chatter:   chatter,
		log:       log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		reply, accepted := b.acceptPhoto(ctx, msg)
		if !accepted {
			b.sendMessage(msg.Chat.ID, reply)
			return
		}
		// Диагностика в отдельной горутине, чтобы не блокировать других пользователей
		go b.handlePhoto(ctx, msg)
		return
	}

	// Текстовое сообщение без команды считается вопросом в чат
	if msg.Text != "" {
		go b.handleQuestion(ctx, msg)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, b.commandReply(ctx, msg))
}

// commandReply применяет команду к состоянию пользователя и возвращает ответ.
// Пока идёт диагностика, команды не меняют состояние.
func (b *Bot) commandReply(ctx context.Context, msg *tgbotapi.Message) string {
	var (
		ok  = true
		err error
	)
	reply := msgUnknownCommand
	switch msg.Command() {
	case "start":
		_, _, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		reply = msgStart

	case "help":
		reply = msgHelp

	case "check":
		_, ok, err = b.users.BeginCheck(ctx, msg.From.ID, msg.Chat.ID)
		reply = msgAwaitingPhoto

	case "cancel":
		_, ok, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		reply = msgCancelled
	}

	if err != nil {
		b.log.WithError(err).Error("error saving user state")
		return msgProcessingError
	}
	if !ok {
		return msgBusy
	}
	return reply
}

// acceptPhoto занимает пользователя под диагностику.
// Если фото не ждали, возвращает ответ для пользователя и false.
func (b *Bot) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) (string, bool) {
	user, started, err := b.users.StartProcessing(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.WithError(err).Error("error saving user state")
		return msgProcessingError, false
	}
	if started {
		return "", true
	}
	if user.Busy() {
		return msgBusy, false
	}
	return msgCheckFirst, false
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	log := b.log.WithFields(logrus.Fields{"chat_id": msg.Chat.ID, "message_id": msg.MessageID})

	succeeded := false
	// Возвращаем в главное меню
	defer func() {
		user, err := b.users.FinishProcessing(ctx, msg.From.ID, msg.Chat.ID, succeeded)
		if err != nil {
			log.WithError(err).Error("error saving user state")
			return
		}
		log.WithField("diagnoses", user.Diagnoses).Debug("photo processed")
	}()

	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.WithError(err).Error("error downloading photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	diag, err := b.diagnoser.Diagnose(ctx, &entity.UploadedImage{
		FileName: fmt.Sprintf("telegram_%d_%d.jpg", msg.Chat.ID, msg.MessageID),
		Data:     imageData,
	})
	if err != nil {
		log.WithError(err).Error("diagnosis failed")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	succeeded = true
	for _, text := range formatDiagnosis(diag) {
		b.sendMessage(msg.Chat.ID, text)
	}
}

// handleQuestion отвечает на текстовый вопрос
func (b *Bot) handleQuestion(ctx context.Context, msg *tgbotapi.Message) {
	reply := b.chatter.Ask(ctx, msg.Text)
	if reply.Response.Status != http.StatusOK {
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(msg.Chat.ID, truncate(plainText(reply.Response.Response), maxMessageLen))
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, errors.Wrap(err, "get file")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download file")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Error("error sending message")
	}
}
