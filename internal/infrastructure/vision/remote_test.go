package vision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"agri-assistant/internal/domain/entity"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaf.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o644))
	return path
}

func TestRemoteDetector_Detect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "jpeg-bytes", string(data))
		require.Equal(t, "leaf.jpg", header.Filename)
		require.Equal(t, "true", r.FormValue("save"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"boxes": [[1, 2, 3, 4, 0.77, 1], [5, 6, 7, 8, 0.91, 0]],
			"names": {"0": "Healthy", "1": "Leaf Blight"},
			"annotated": "runs/detect/predict/leaf.jpg"
		}`))
	}))
	defer srv.Close()

	out, err := NewRemoteDetector(srv.URL+"/predict", srv.Client()).Detect(context.Background(), writeImage(t))
	require.NoError(t, err)
	require.Equal(t, entity.ClassTable{0: "Healthy", 1: "Leaf Blight"}, out.Classes)
	require.Equal(t, "runs/detect/predict/leaf.jpg", out.AnnotatedPath)
	require.Equal(t, []entity.RawDetection{
		{Box: entity.BoundingBox{1, 2, 3, 4}, Confidence: 0.77, ClassIndex: 1},
		{Box: entity.BoundingBox{5, 6, 7, 8}, Confidence: 0.91, ClassIndex: 0},
	}, out.Detections)
}

func TestRemoteDetector_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewRemoteDetector(srv.URL, nil).Detect(context.Background(), writeImage(t))
	require.Error(t, err)
}

func TestRemoteDetector_BadRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"boxes": [[1, 2, 3]], "names": {"0": "Healthy"}}`))
	}))
	defer srv.Close()

	_, err := NewRemoteDetector(srv.URL, nil).Detect(context.Background(), writeImage(t))
	require.Error(t, err)
}

func TestRemoteDetector_CheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	require.NoError(t, NewRemoteDetector(srv.URL+"/predict", nil).CheckHealth(context.Background()))

	srv.Close()
	require.Error(t, NewRemoteDetector(srv.URL+"/predict", nil).CheckHealth(context.Background()))
}

// shortWriter принимает не больше limit байт.
type shortWriter struct {
	limit int
	n     int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.limit {
		return 0, io.ErrShortWrite
	}
	w.n += len(p)
	return len(p), nil
}

func TestWriteImageForm_ReportsCloseError(t *testing.T) {
	full := &shortWriter{limit: 1 << 20}
	_, err := writeImageForm(full, "leaf.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	// Всё, кроме последнего байта закрывающей границы
	_, err = writeImageForm(&shortWriter{limit: full.n - 1}, "leaf.jpg", []byte("jpeg-bytes"))
	require.ErrorContains(t, err, "close multipart form")
}
