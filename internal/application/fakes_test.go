package application

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/inference"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return "", repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	r.users[u.ID.Hex()] = &cp
	return u.ID.Hex(), nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id string, upd entity.UserUpdate) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Name != "" {
		u.Name = upd.Name
	}
	if upd.PasswordHash != "" {
		u.Password = upd.PasswordHash
	}
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports []entity.Report
}

func (r *fakeReportRepo) Insert(_ context.Context, rep *entity.Report) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep.ID = primitive.NewObjectID()
	r.reports = append(r.reports, *rep)
	return rep.ID.Hex(), nil
}

func (r *fakeReportRepo) Get(_ context.Context, ownerID, reportID string) (*entity.Report, error) {
	if _, err := primitive.ObjectIDFromHex(reportID); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reports {
		if r.reports[i].ID.Hex() == reportID && r.reports[i].UserID == ownerID {
			cp := r.reports[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReportRepo) ListByOwner(_ context.Context, ownerID string) ([]entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Report, 0)
	for _, rep := range r.reports {
		if rep.UserID == ownerID {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReportRepo) Update(_ context.Context, ownerID, reportID string, upd entity.ReportUpdate) (*entity.Report, error) {
	if _, err := primitive.ObjectIDFromHex(reportID); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reports {
		if r.reports[i].ID.Hex() == reportID && r.reports[i].UserID == ownerID {
			if upd.Summary != nil {
				r.reports[i].Description.Summary = *upd.Summary
			}
			if upd.Archived != nil {
				r.reports[i].Archived = *upd.Archived
			}
			cp := r.reports[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReportRepo) Delete(_ context.Context, ownerID, reportID string) error {
	if _, err := primitive.ObjectIDFromHex(reportID); err != nil {
		return repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reports {
		if r.reports[i].ID.Hex() == reportID && r.reports[i].UserID == ownerID {
			r.reports = append(r.reports[:i], r.reports[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeInference returns canned labels/predictions and writes a throwaway
// annotated file so cleanup behavior can be observed.
type fakeInference struct {
	labels      []string
	predictions []entity.Prediction
	err         error
	annotateDir string

	lastAnnotated string
}

func (f *fakeInference) Predict(_ context.Context, _ string) (*inference.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(f.annotateDir, "pred_"+uuid.NewString()+".jpg")
	if err := os.WriteFile(path, []byte("annotated"), 0o644); err != nil {
		return nil, err
	}
	f.lastAnnotated = path
	return &inference.Result{
		Labels:        f.labels,
		Predictions:   f.predictions,
		AnnotatedPath: path,
	}, nil
}

type fakeUploader struct {
	url    string
	err    error
	called int
}

func (f *fakeUploader) Upload(_ context.Context, _ string, _ string) (string, error) {
	f.called++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// fakeListCache is a map-backed stand-in for the Redis report list cache.
type fakeListCache struct {
	mu    sync.Mutex
	lists map[string][]entity.Report
	hits  int
	sets  int
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{lists: map[string][]entity.Report{}}
}

func (c *fakeListCache) Get(_ context.Context, ownerID string, dest *[]entity.Report) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lists[ownerID]
	if !ok {
		return false, nil
	}
	c.hits++
	*dest = l
	return true, nil
}

func (c *fakeListCache) Set(_ context.Context, ownerID string, reports []entity.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[ownerID] = reports
	c.sets++
	return nil
}

func (c *fakeListCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, ownerID)
	return nil
}

func (c *fakeListCache) cached(ownerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lists[ownerID]
	return ok
}

type fakePublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, body)
	return nil
}
