package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/repository"
)

var ErrReportNotFound = errors.New("report not found")

const storageFolder = "textile_images"

// ImageUploader is the storage collaborator: it hosts an annotated image
// externally and returns its URL.
type ImageUploader interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
}

// EventPublisher pushes report lifecycle events to a queue, best-effort.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ReportEvent is the message published on report creation and deletion and
// consumed by the event worker.
type ReportEvent struct {
	Type       string    `json:"type" bson:"type"` // report.created, report.deleted
	ReportID   string    `json:"report_id" bson:"report_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Severity   string    `json:"severity,omitempty" bson:"severity,omitempty"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}

// ReportService persists, lists, updates and deletes reports scoped to their
// owning user. Image hosting, event publishing and list caching are side
// channels: all three degrade gracefully when unavailable.
type ReportService struct {
	Repo       repository.ReportRepository
	Inspection *InspectionService
	Uploader   ImageUploader
	Publisher  EventPublisher
	Cache      ReportListCache
	Logger     *logrus.Logger
}

func NewReportService(repo repository.ReportRepository, insp *InspectionService, up ImageUploader, pub EventPublisher, cache ReportListCache, logger *logrus.Logger) *ReportService {
	return &ReportService{Repo: repo, Inspection: insp, Uploader: up, Publisher: pub, Cache: cache, Logger: logger}
}

// Upload saves the uploaded image to a temp file, analyzes it, uploads the
// annotated image to external storage (best-effort: failure leaves image_url
// empty), persists the report and removes all temporary files on every exit
// path.
func (s *ReportService) Upload(ctx context.Context, ownerID string, image io.Reader, filename, location string) (*entity.Report, error) {
	tmpPath, err := saveTemp(s.Inspection.TmpDir, filename, image)
	if err != nil {
		return nil, err
	}
	defer removeIfExists(tmpPath)

	analysis, err := s.Inspection.Analyze(ctx, tmpPath, location)
	if err != nil {
		return nil, err
	}
	defer removeIfExists(analysis.AnnotatedImage)

	imageURL := ""
	if s.Uploader != nil {
		url, upErr := s.Uploader.Upload(ctx, analysis.AnnotatedImage, storageFolder)
		if upErr != nil {
			if s.Logger != nil {
				s.Logger.WithError(upErr).WithField("user_id", ownerID).Warn("annotated image upload failed")
			}
		} else {
			imageURL = url
		}
	}

	report := &entity.Report{
		UserID:      ownerID,
		ImageURL:    imageURL,
		DefectType:  analysis.DefectType,
		Predictions: analysis.Predictions,
		Description: analysis.Report,
		Location:    location,
		CreatedAt:   time.Now().UTC(),
		Archived:    false,
	}
	id, err := s.Repo.Insert(ctx, report)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ReportEvent{
		Type:       "report.created",
		ReportID:   id,
		UserID:     ownerID,
		Severity:   report.Description.OverallSeverity,
		OccurredAt: report.CreatedAt,
	})
	s.invalidateList(ctx, ownerID)
	return report, nil
}

// List returns all reports owned by ownerID, newest first. A warm Redis
// cache short-circuits the repository.
func (s *ReportService) List(ctx context.Context, ownerID string) ([]entity.Report, error) {
	if s.Cache != nil {
		var cached []entity.Report
		if ok, err := s.Cache.Get(ctx, ownerID, &cached); err == nil && ok {
			return cached, nil
		}
	}
	reports, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, ownerID, reports); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("report list cache write failed")
		}
	}
	return reports, nil
}

// Update applies a partial patch limited to summary and archived. The owned
// report is resolved first, so a missing or foreign id is a not-found even
// when the patch carries no fields.
func (s *ReportService) Update(ctx context.Context, ownerID, reportID string, upd entity.ReportUpdate) (*entity.Report, error) {
	if _, err := s.Repo.Get(ctx, ownerID, reportID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if upd.Empty() {
		return nil, ErrNoUpdateFields
	}
	report, err := s.Repo.Update(ctx, ownerID, reportID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	s.invalidateList(ctx, ownerID)
	return report, nil
}

// Delete removes an owned report permanently.
func (s *ReportService) Delete(ctx context.Context, ownerID, reportID string) error {
	if err := s.Repo.Delete(ctx, ownerID, reportID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	s.publish(ctx, ReportEvent{
		Type:       "report.deleted",
		ReportID:   reportID,
		UserID:     ownerID,
		OccurredAt: time.Now().UTC(),
	})
	s.invalidateList(ctx, ownerID)
	return nil
}

func (s *ReportService) publish(ctx context.Context, ev ReportEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", ev.Type).Warn("report event publish failed")
	}
}

func (s *ReportService) invalidateList(ctx context.Context, ownerID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, ownerID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("report list cache invalidation failed")
	}
}
