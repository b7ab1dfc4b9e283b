package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agri-assistant/internal/domain/entity"
)

var testClasses = entity.ClassTable{0: "Healthy", 1: "Leaf Blight", 2: "Rust"}

func newTestDiagnosis(detector *fakeDetector, gen *fakeGenerator, history *fakeHistory) (*DiagnosisService, *fakeUploads) {
	uploads := &fakeUploads{}
	advisor := NewAdvisoryService(gen, fakeRenderer{})
	if history == nil {
		return NewDiagnosisService(uploads, detector, advisor, nil, quietLogger()), uploads
	}
	return NewDiagnosisService(uploads, detector, advisor, history, quietLogger()), uploads
}

func TestDiagnosisService_NoFile(t *testing.T) {
	detector := &fakeDetector{}
	gen := &fakeGenerator{}
	svc, uploads := newTestDiagnosis(detector, gen, nil)

	for _, img := range []*entity.UploadedImage{nil, {FileName: "leaf.jpg"}, {Data: []byte{1}}} {
		diag, err := svc.Diagnose(context.Background(), img)
		require.NoError(t, err)
		require.Equal(t, &entity.StatusResult{Status: 400, Error: "No file uploaded"}, diag.Failure)
	}

	require.Empty(t, uploads.saved)
	require.Empty(t, detector.calls)
	require.Empty(t, gen.prompts)
}

func TestDiagnosisService_NoDetections(t *testing.T) {
	detector := &fakeDetector{output: &entity.DetectionOutput{Classes: testClasses}}
	gen := &fakeGenerator{}
	history := &fakeHistory{}
	svc, uploads := newTestDiagnosis(detector, gen, history)

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.NoError(t, err)
	require.Nil(t, diag.Results)
	require.Equal(t, &entity.StatusResult{Status: 200, Error: "No disease detected"}, diag.Failure)
	require.Equal(t, []string{"uploads/leaf.jpg"}, uploads.saved)
	require.Equal(t, []string{"uploads/leaf.jpg"}, detector.calls)
	require.Empty(t, gen.prompts)
	require.Empty(t, history.records)
}

func TestDiagnosisService_PreservesDetectorOrder(t *testing.T) {
	detector := &fakeDetector{output: &entity.DetectionOutput{
		Classes: testClasses,
		Detections: []entity.RawDetection{
			{ClassIndex: 2, Confidence: 0.4},
			{ClassIndex: 0, Confidence: 0.95},
			{ClassIndex: 1, Confidence: 0.6},
		},
	}}
	gen := &fakeGenerator{}
	history := &fakeHistory{}
	svc, _ := newTestDiagnosis(detector, gen, history)

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.NoError(t, err)
	require.Nil(t, diag.Failure)
	require.Len(t, diag.Results, 3)

	names := make([]string, 0, 3)
	for _, r := range diag.Results {
		require.Equal(t, 200, r.Status)
		names = append(names, r.ClassName)
	}
	require.Equal(t, []string{"Rust", "Healthy", "Leaf Blight"}, names)
	require.Equal(t, 0.4, diag.Results[0].Confidence)
	require.Contains(t, gen.prompts[0], "Rust")
	require.Len(t, history.records, 3)
	require.Equal(t, "leaf.jpg", history.records[0].FileName)
}

func TestDiagnosisService_SameClassTwice(t *testing.T) {
	detector := &fakeDetector{output: &entity.DetectionOutput{
		Classes: testClasses,
		Detections: []entity.RawDetection{
			{ClassIndex: 1, Confidence: 0.91},
			{ClassIndex: 1, Confidence: 0.77},
		},
	}}
	gen := &fakeGenerator{}
	svc, _ := newTestDiagnosis(detector, gen, nil)

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.NoError(t, err)
	require.Len(t, diag.Results, 2)
	require.Len(t, gen.prompts, 2)

	require.Equal(t, "Leaf Blight", diag.Results[0].ClassName)
	require.Equal(t, "Leaf Blight", diag.Results[1].ClassName)
	require.Equal(t, 0.91, diag.Results[0].Confidence)
	require.Equal(t, 0.77, diag.Results[1].Confidence)
	require.NotEqual(t, diag.Results[0].Summary, diag.Results[1].Summary)
	require.Contains(t, diag.Results[0].Summary, "<strong>")
}

func TestDiagnosisService_DetectorErrorPropagates(t *testing.T) {
	boom := errors.New("corrupt image")
	svc, _ := newTestDiagnosis(&fakeDetector{err: boom}, &fakeGenerator{}, nil)

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.ErrorIs(t, err, boom)
	require.Nil(t, diag)
}

func TestDiagnosisService_NilDetectorOutput(t *testing.T) {
	detector := &fakeDetector{}
	gen := &fakeGenerator{}
	svc, _ := newTestDiagnosis(detector, gen, nil)

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.ErrorIs(t, err, ErrNoDetectorOutput)
	require.Nil(t, diag)
	require.Empty(t, gen.prompts)
}

func TestDiagnosisService_AdvisoryErrorAbortsRequest(t *testing.T) {
	boom := errors.New("backend timeout")
	detector := &fakeDetector{output: &entity.DetectionOutput{
		Classes:    testClasses,
		Detections: []entity.RawDetection{{ClassIndex: 1}, {ClassIndex: 2}},
	}}
	gen := &fakeGenerator{err: boom, failOn: 2}
	history := &fakeHistory{}
	svc, _ := newTestDiagnosis(detector, gen, history)

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.ErrorIs(t, err, boom)
	require.Nil(t, diag)
	require.Empty(t, history.records)
}

func TestDiagnosisService_UnknownClass(t *testing.T) {
	detector := &fakeDetector{output: &entity.DetectionOutput{
		Classes:    testClasses,
		Detections: []entity.RawDetection{{ClassIndex: 9}},
	}}
	gen := &fakeGenerator{}
	svc, _ := newTestDiagnosis(detector, gen, nil)

	_, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.ErrorIs(t, err, entity.ErrUnknownClass)
	require.Empty(t, gen.prompts)
}

func TestDiagnosisService_HistoryErrorIsIgnored(t *testing.T) {
	detector := &fakeDetector{output: &entity.DetectionOutput{
		Classes:    testClasses,
		Detections: []entity.RawDetection{{ClassIndex: 2, Confidence: 0.5}},
	}}
	svc, _ := newTestDiagnosis(detector, &fakeGenerator{}, &fakeHistory{err: errors.New("disk full")})

	diag, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.NoError(t, err)
	require.Len(t, diag.Results, 1)
}

func TestDiagnosisService_UploadError(t *testing.T) {
	detector := &fakeDetector{}
	svc := NewDiagnosisService(&fakeUploads{err: errors.New("read-only")}, detector,
		NewAdvisoryService(&fakeGenerator{}, fakeRenderer{}), nil, quietLogger())

	_, err := svc.Diagnose(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("img")})
	require.Error(t, err)
	require.Empty(t, detector.calls)
}

func TestDiagnosisService_HistoryWithoutStore(t *testing.T) {
	svc, _ := newTestDiagnosis(&fakeDetector{}, &fakeGenerator{}, nil)

	records, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, records)
}
