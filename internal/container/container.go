package container

import (
	"github.com/sirupsen/logrus"

	app "agri-assistant/internal/application"
	"agri-assistant/internal/domain/port"
)

type Container struct {
	UserService      *app.UserService
	DiagnosisService *app.DiagnosisService
	ChatService      *app.ChatService
}

// Deps: адаптеры инфраструктуры, из которых собираются сервисы.
// History может быть nil.
type Deps struct {
	Users     port.UserRepository
	Uploads   port.UploadStore
	Detector  port.DiseaseDetector
	Generator port.TextGenerator
	Renderer  port.MarkupRenderer
	History   port.HistoryRepository
}

func New(deps Deps, log logrus.FieldLogger) *Container {
	userService := app.NewUserService(deps.Users)
	advisoryService := app.NewAdvisoryService(deps.Generator, deps.Renderer)
	diagnosisService := app.NewDiagnosisService(
		deps.Uploads,
		deps.Detector,
		advisoryService,
		deps.History,
		log.WithField("service", "diagnosis"),
	)
	chatService := app.NewChatService(deps.Generator, deps.Renderer, log.WithField("service", "chat"))

	return &Container{
		UserService:      userService,
		DiagnosisService: diagnosisService,
		ChatService:      chatService,
	}
}
