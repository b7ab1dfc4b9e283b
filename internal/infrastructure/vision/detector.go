//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// YOLODetector запускает ONNX-экспорт YOLOv8 через модуль DNN OpenCV.
type YOLODetector struct {
	mu           sync.Mutex // gocv.Net нельзя использовать из нескольких горутин
	net          gocv.Net
	classes      entity.ClassTable
	annotatedDir string
	log          logrus.FieldLogger
}

// NewYOLODetector загружает веса модели и таблицу классов.
func NewYOLODetector(modelPath string, classes entity.ClassTable, annotatedDir string, log logrus.FieldLogger) (*YOLODetector, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Wrapf(err, "model file %s", modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load network from %s", modelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "set preferable backend")
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "set preferable target")
	}

	log.WithFields(logrus.Fields{"model": modelPath, "classes": len(classes)}).Info("detection network initialized")
	return &YOLODetector{
		net:          net,
		classes:      classes,
		annotatedDir: annotatedDir,
		log:          log,
	}, nil
}

// Detect анализирует изображение и сохраняет копию с подписанными рамками.
func (d *YOLODetector) Detect(ctx context.Context, imagePath string) (*entity.DetectionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		return nil, errors.Errorf("failed to decode image %s", imagePath)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(InputSize, InputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	d.mu.Unlock()
	defer output.Close()

	// Выход YOLOv8: [1, 4+nc, anchors].
	sizes := output.Size()
	if len(sizes) != 3 {
		return nil, errors.Errorf("unexpected output dims %v", sizes)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read output tensor")
	}

	detections, err := DecodeYOLO(data, sizes[1]-4, sizes[2], DefaultYOLOOptions(mat.Cols(), mat.Rows()))
	if err != nil {
		return nil, err
	}

	annotated, err := d.annotate(mat, detections, imagePath)
	if err != nil {
		return nil, err
	}

	return &entity.DetectionOutput{
		Detections:    detections,
		Classes:       d.classes,
		AnnotatedPath: annotated,
	}, nil
}

// annotate рисует рамки с подписями и сохраняет результат в annotatedDir.
func (d *YOLODetector) annotate(mat gocv.Mat, detections []entity.RawDetection, imagePath string) (string, error) {
	if err := os.MkdirAll(d.annotatedDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create annotated dir %s", d.annotatedDir)
	}

	canvas := mat.Clone()
	defer canvas.Close()

	green := color.RGBA{G: 255, A: 255}
	for _, det := range detections {
		rect := image.Rect(int(det.Box[0]), int(det.Box[1]), int(det.Box[2]), int(det.Box[3]))
		gocv.Rectangle(&canvas, rect, green, 2)

		label := fmt.Sprintf("%s %.2f", d.classes[det.ClassIndex], det.Confidence)
		gocv.PutText(&canvas, label, image.Pt(rect.Min.X, rect.Min.Y-5), gocv.FontHersheySimplex, 0.5, green, 1)
	}

	path := filepath.Join(d.annotatedDir, filepath.Base(imagePath))
	if !gocv.IMWrite(path, canvas) {
		return "", errors.Errorf("failed to write annotated image %s", path)
	}
	return path, nil
}

// Close освобождает сеть
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

var _ port.DiseaseDetector = (*YOLODetector)(nil)
