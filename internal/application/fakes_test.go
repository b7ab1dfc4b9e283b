package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"agri-assistant/internal/domain/entity"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeUploads struct {
	saved []string
	err   error
}

func (f *fakeUploads) Save(_ context.Context, image *entity.UploadedImage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := "uploads/" + image.FileName
	f.saved = append(f.saved, path)
	return path, nil
}

type fakeDetector struct {
	output *entity.DetectionOutput
	err    error
	calls  []string
}

func (f *fakeDetector) Detect(_ context.Context, imagePath string) (*entity.DetectionOutput, error) {
	f.calls = append(f.calls, imagePath)
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

// fakeGenerator возвращает пронумерованный ответ на каждый вызов.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	err     error
	failOn  int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil && (f.failOn == 0 || f.failOn == len(f.prompts)) {
		return "", f.err
	}
	return fmt.Sprintf("**answer %d**", len(f.prompts)), nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(markdown string) (string, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(markdown, "**"), "**")
	return "<p><strong>" + inner + "</strong></p>\n", nil
}

type fakeHistory struct {
	records []entity.HistoryRecord
	err     error
}

func (f *fakeHistory) Add(_ context.Context, records []entity.HistoryRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]entity.HistoryRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}
