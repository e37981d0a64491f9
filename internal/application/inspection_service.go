package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/inference"
)

// ErrInference wraps any failure of the inference collaborator. The
// orchestrator performs no retry.
var ErrInference = errors.New("inference failed")

// AnalysisResult is the outcome of one inspection round: the detections, the
// synthesized report and the locally written annotated image.
type AnalysisResult struct {
	Predictions    []entity.Prediction      `json:"predictions"`
	Report         entity.ReportDescription `json:"report"`
	AnnotatedImage string                   `json:"annotated_image"`

	// DefectType is the collapsed verdict used by the report store; it is not
	// part of the analyze response body.
	DefectType []string `json:"-"`
}

// InspectionService sequences upload -> inference -> report synthesis.
// Inference calls are long-running; a semaphore bounds how many run at once
// so a slow collaborator cannot starve the serving loop.
type InspectionService struct {
	Inference inference.Client
	TmpDir    string
	Logger    *logrus.Logger
	sem       chan struct{}
}

func NewInspectionService(client inference.Client, tmpDir string, maxConcurrent int, logger *logrus.Logger) *InspectionService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &InspectionService{
		Inference: client,
		TmpDir:    tmpDir,
		Logger:    logger,
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// AnalyzeUpload persists the uploaded image to a request-scoped temp file,
// runs Analyze on it and removes the temp file on every exit path. The
// annotated image is left on disk for the caller.
func (s *InspectionService) AnalyzeUpload(ctx context.Context, r io.Reader, filename, location string) (*AnalysisResult, error) {
	tmpPath, err := saveTemp(s.TmpDir, filename, r)
	if err != nil {
		return nil, err
	}
	defer removeIfExists(tmpPath)

	return s.Analyze(ctx, tmpPath, location)
}

// Analyze delegates to the inference collaborator and normalizes the outcome
// into a report structure. Any collaborator error surfaces as ErrInference.
func (s *InspectionService) Analyze(ctx context.Context, imagePath, location string) (*AnalysisResult, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.sem }()

	res, err := s.Inference.Predict(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	out := &AnalysisResult{
		Report:         describeLabels(res.Labels),
		AnnotatedImage: res.AnnotatedPath,
		DefectType:     res.Labels,
		Predictions:    res.Predictions,
	}
	// A clean image carries a single synthetic prediction so the report
	// always records what was (not) found.
	if len(out.Predictions) == 0 {
		out.Predictions = []entity.Prediction{{Label: "defect free", Confidence: 1.0}}
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"severity": out.Report.OverallSeverity,
			"location": location,
		}).Info("inspection analyzed")
	}
	return out, nil
}

// describeLabels is the fixed synthesis mapping from detection labels to the
// structured quality report.
func describeLabels(labels []string) entity.ReportDescription {
	if len(labels) == 1 && labels[0] == "defect free" {
		return entity.ReportDescription{
			Summary:         "No defects detected",
			OverallSeverity: "none",
			Details: []entity.ReportDetail{{
				Title:          "No defect detected",
				Severity:       "none",
				Description:    "No defects detected. Fabric quality appears normal.",
				Recommendation: "No action required.",
			}},
		}
	}
	return entity.ReportDescription{
		Summary:         "Defect(s) detected",
		OverallSeverity: "high",
		Details: []entity.ReportDetail{{
			Title:          "Fabric defect detected",
			Severity:       "high",
			Description:    "Defects were detected in the fabric.",
			Recommendation: "Inspect and reprocess the affected area.",
		}},
	}
}

// saveTemp writes the upload into dir under a collision-free name.
func saveTemp(dir, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + "_" + filepath.Base(filename)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func removeIfExists(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}
