package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"agri-assistant/internal/domain/entity"
)

const (
	maxUploadSize       = 50 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Diagnoser проводит фото через конвейер диагностики
type Diagnoser interface {
	Diagnose(ctx context.Context, image *entity.UploadedImage) (*entity.Diagnosis, error)
	History(ctx context.Context, limit int) ([]entity.HistoryRecord, error)
}

// Chatter отвечает на текстовые вопросы
type Chatter interface {
	Ask(ctx context.Context, question string) *entity.ChatReply
}

// Handler обслуживает HTTP API ассистента
type Handler struct {
	diagnoser Diagnoser
	chatter   Chatter
	staticDir string
}

func NewHandler(diagnoser Diagnoser, chatter Chatter, staticDir string) *Handler {
	return &Handler{
		diagnoser: diagnoser,
		chatter:   chatter,
		staticDir: staticDir,
	}
}

// Router собирает маршруты и middleware
func (h *Handler) Router(log logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/predict/", h.Predict).Methods(http.MethodPost)
	r.HandleFunc("/chat/", h.Chat).Methods(http.MethodPost)
	r.HandleFunc("/history/", h.History).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if h.staticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir))))
	}

	r.Use(requestLogger(log))
	r.Use(recoverer)
	return r
}

// Predict обрабатывает POST /predict/
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context())

	image, err := readUpload(r)
	if err != nil {
		log.WithError(err).Error("failed to read upload")
		internalError(w)
		return
	}

	diag, err := h.diagnoser.Diagnose(r.Context(), image)
	if err != nil {
		log.WithError(err).Error("diagnosis failed")
		internalError(w)
		return
	}

	respondJSON(w, diag.Body(), http.StatusOK)
}

// readUpload достаёт файл из поля "file". Запрос не multipart или без поля file
// означает отсутствие файла, остальные ошибки разбора возвращаются.
func readUpload(r *http.Request) (*entity.UploadedImage, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "parse multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "read uploaded file")
	}

	return &entity.UploadedImage{FileName: header.Filename, Data: data}, nil
}

type chatRequest struct {
	Question *string `json:"question"`
}

// Chat обрабатывает POST /chat/
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, "body", "", "invalid JSON body")
		return
	}
	if req.Question == nil {
		respondValidationError(w, "body", "question", "field required")
		return
	}

	respondJSON(w, h.chatter.Ask(r.Context(), *req.Question), http.StatusOK)
}

// History обрабатывает GET /history/?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondValidationError(w, "query", "limit", "must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.diagnoser.History(r.Context(), limit)
	if err != nil {
		loggerFrom(r.Context()).WithError(err).Error("failed to read history")
		internalError(w)
		return
	}

	respondJSON(w, records, http.StatusOK)
}

// Health проверка здоровья сервиса
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type validationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// respondValidationError отвечает 422 с описанием неверного поля
func respondValidationError(w http.ResponseWriter, source, field, msg string) {
	loc := []string{source}
	if field != "" {
		loc = append(loc, field)
	}
	respondJSON(w, map[string][]validationDetail{
		"detail": {{Loc: loc, Msg: msg, Type: "value_error"}},
	}, http.StatusUnprocessableEntity)
}

func internalError(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
