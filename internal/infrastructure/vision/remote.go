package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// RemoteDetector выполняет inference через внешний сервис с моделью.
type RemoteDetector struct {
	inferenceURL string
	client       *http.Client
}

// NewRemoteDetector создаёт адаптер сервиса по адресу inferenceURL.
// client может быть nil.
func NewRemoteDetector(inferenceURL string, client *http.Client) *RemoteDetector {
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteDetector{
		inferenceURL: inferenceURL,
		client:       client,
	}
}

// remoteResponse содержит ответ сервиса: строки [x1, y1, x2, y2, conf, cls] и таблица классов.
type remoteResponse struct {
	Boxes     [][]float64       `json:"boxes"`
	Names     map[string]string `json:"names"`
	Annotated string            `json:"annotated"`
}

// Detect отправляет изображение в сервис и разбирает ответ.
func (m *RemoteDetector) Detect(ctx context.Context, imagePath string) (*entity.DetectionOutput, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}

	body := &bytes.Buffer{}
	contentType, err := writeImageForm(body, filepath.Base(imagePath), imageData)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.inferenceURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}

	classes := make(entity.ClassTable, len(result.Names))
	for key, name := range result.Names {
		index, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(err, "class index %q", key)
		}
		classes[index] = name
	}

	detections := make([]entity.RawDetection, 0, len(result.Boxes))
	for _, row := range result.Boxes {
		raw, err := entity.ParseRow(row)
		if err != nil {
			return nil, err
		}
		detections = append(detections, raw)
	}

	return &entity.DetectionOutput{
		Detections:    detections,
		Classes:       classes,
		AnnotatedPath: result.Annotated,
	}, nil
}

// writeImageForm пишет multipart-форму с полем file и флагом save.
// Возвращает Content-Type запроса.
func writeImageForm(w io.Writer, fileName string, data []byte) (string, error) {
	writer := multipart.NewWriter(w)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Wrap(err, "copy image data")
	}
	if err := writer.WriteField("save", "true"); err != nil {
		return "", errors.Wrap(err, "write save field")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart form")
	}

	return writer.FormDataContentType(), nil
}

// CheckHealth проверяет доступность сервиса по пути /health
func (m *RemoteDetector) CheckHealth(ctx context.Context) error {
	u, err := url.Parse(m.inferenceURL)
	if err != nil {
		return errors.Wrap(err, "parse inference url")
	}
	u.Path = "/health"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send health request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("ml service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

var _ port.DiseaseDetector = (*RemoteDetector)(nil)
