package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prediction is a single detection from the inference collaborator.
// List order is detection order.
type Prediction struct {
	Label      string  `bson:"label" json:"label"`
	Confidence float64 `bson:"confidence" json:"confidence"`
}

// ReportDetail is one entry of a report's structured description.
type ReportDetail struct {
	Title          string `bson:"title" json:"title"`
	Severity       string `bson:"severity" json:"severity"`
	Description    string `bson:"description" json:"description"`
	Recommendation string `bson:"recommendation" json:"recommendation"`
}

// ReportDescription is the synthesized quality report for one image.
type ReportDescription struct {
	Summary         string         `bson:"summary" json:"summary"`
	OverallSeverity string         `bson:"overall_severity" json:"overall_severity"`
	Details         []ReportDetail `bson:"details" json:"details"`
}

// Report is a persisted inspection result owned by exactly one user.
// Only Description.Summary and Archived are mutable after creation.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	DefectType  []string           `bson:"defect_type" json:"defect_type"`
	Predictions []Prediction       `bson:"predictions" json:"predictions"`
	Description ReportDescription  `bson:"description" json:"description"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	Archived    bool               `bson:"archived" json:"archived"`
}

// ReportUpdate is the tagged set of mutable report fields. Nil pointers mean
// "leave unchanged"; anything outside this struct never reaches the
// persistence layer.
type ReportUpdate struct {
	Summary  *string
	Archived *bool
}

// Empty reports whether the update carries no fields at all.
func (u ReportUpdate) Empty() bool {
	return u.Summary == nil && u.Archived == nil
}
