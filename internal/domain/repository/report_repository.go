package repository

import (
	"context"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
)

// ReportRepository defines owner-scoped persistence operations over reports.
// Every read/write/delete is filtered by the owning user id recorded at
// creation time.
type ReportRepository interface {
	Insert(ctx context.Context, r *entity.Report) (string, error)
	// Get returns the report with that id owned by ownerID, or ErrNotFound.
	Get(ctx context.Context, ownerID, reportID string) (*entity.Report, error)
	// ListByOwner returns all reports owned by ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Report, error)
	// Update applies the allowed mutable fields and returns the updated
	// report, or ErrNotFound when no report with that id is owned by ownerID.
	Update(ctx context.Context, ownerID, reportID string, upd entity.ReportUpdate) (*entity.Report, error)
	// Delete removes the report permanently, or returns ErrNotFound when no
	// matching owned report exists.
	Delete(ctx context.Context, ownerID, reportID string) error
}
