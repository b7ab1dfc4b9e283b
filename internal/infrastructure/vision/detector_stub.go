//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// ErrGoCVDisabled возвращается, если сборка без тега gocv.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// YOLODetector: заглушка детектора для сборки без OpenCV.
type YOLODetector struct{}

// NewYOLODetector возвращает ошибку, если сборка без тега gocv.
func NewYOLODetector(modelPath string, classes entity.ClassTable, annotatedDir string, log logrus.FieldLogger) (*YOLODetector, error) {
	_ = modelPath
	_ = classes
	_ = annotatedDir
	_ = log
	return nil, ErrGoCVDisabled
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Detect(ctx context.Context, imagePath string) (*entity.DetectionOutput, error) {
	_ = ctx
	_ = imagePath
	return nil, ErrGoCVDisabled
}

// Close ничего не делает
func (d *YOLODetector) Close() error {
	return nil
}

var _ port.DiseaseDetector = (*YOLODetector)(nil)
