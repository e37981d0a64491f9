package inference

import (
	"context"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
)

// Result contains the outcome returned by the inference collaborator for one
// image.
type Result struct {
	// Labels is the collapsed verdict: ["defect free"] when nothing was
	// detected, ["defect detected"] otherwise.
	Labels []string
	// Predictions are the raw detections with their real confidences, in
	// detection order. Empty when the fabric is defect free.
	Predictions []entity.Prediction
	// AnnotatedPath is the local path of the annotated image written by the
	// collaborator client. The caller owns the file.
	AnnotatedPath string
}

// Client exposes the subset of the object-detection service used by the
// inspection flow.
type Client interface {
	Predict(ctx context.Context, imagePath string) (*Result, error)
}
