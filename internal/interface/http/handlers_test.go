package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/application"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/inference"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/repository"
	handlers "github.com/priyasp2804/Textile-Defect-Detection/internal/interface/http"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/router"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/router/modules"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	m.Run()
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return "", errors.New("duplicate key")
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	r.users[u.ID.Hex()] = &cp
	return u.ID.Hex(), nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
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

func (r *memUserRepo) Update(_ context.Context, id string, upd entity.UserUpdate) error {
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

type memReportRepo struct {
	mu      sync.Mutex
	reports []entity.Report
}

func (r *memReportRepo) Insert(_ context.Context, rep *entity.Report) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep.ID = primitive.NewObjectID()
	r.reports = append(r.reports, *rep)
	return rep.ID.Hex(), nil
}

func (r *memReportRepo) Get(_ context.Context, ownerID, reportID string) (*entity.Report, error) {
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

func (r *memReportRepo) ListByOwner(_ context.Context, ownerID string) ([]entity.Report, error) {
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

func (r *memReportRepo) Update(_ context.Context, ownerID, reportID string, upd entity.ReportUpdate) (*entity.Report, error) {
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

func (r *memReportRepo) Delete(_ context.Context, ownerID, reportID string) error {
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

type stubInference struct {
	labels      []string
	predictions []entity.Prediction
	err         error
}

func (s *stubInference) Predict(_ context.Context, _ string) (*inference.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &inference.Result{Labels: s.labels, Predictions: s.predictions}, nil
}

type stubUploader struct{ url string }

func (s *stubUploader) Upload(_ context.Context, _, _ string) (string, error) {
	return s.url, nil
}

type testServer struct {
	engine *gin.Engine
	jwt    *helpers.JWTManager
}

func newTestServer(t *testing.T, inf inference.Client) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwt := helpers.NewJWTManager("handler-test-secret", time.Hour)
	userRepo := &memUserRepo{users: map[string]*entity.User{}}
	reportRepo := &memReportRepo{}

	userSvc := application.NewUserService(userRepo, jwt, logger)
	inspSvc := application.NewInspectionService(inf, t.TempDir(), 2, logger)
	reportSvc := application.NewReportService(reportRepo, inspSvc,
		&stubUploader{url: "https://storage.googleapis.com/test-bucket/textile_images/x.jpg"}, nil, nil, logger)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Add(modules.NewAuthModule(handlers.NewAuthHandler(userSvc, logger), jwt))
	reg.Add(modules.NewInspectionModule(handlers.NewInspectionHandler(inspSvc, logger)))
	reg.Add(modules.NewReportModule(handlers.NewReportHandler(reportSvc, logger), jwt))
	reg.RegisterAll()

	return &testServer{engine: engine, jwt: jwt}
}

type envelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (s *testServer) doMultipart(t *testing.T, path, token, field, filename string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (s *testServer) signupAndLogin(t *testing.T, name, email string) string {
	t.Helper()
	w, _ := s.doJSON(t, http.MethodPost, "/auth/signup", "", gin.H{
		"name": name, "email": email, "password": "secret99", "confirm_password": "secret99",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
		"email": email, "password": "secret99",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := env.Data["access_token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "bearer", env.Data["token_type"])
	return token
}

func TestSignupValidationError(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})

	w, env := s.doJSON(t, http.MethodPost, "/auth/signup", "", gin.H{
		"name": "Priya", "email": "not-an-email", "password": "x", "confirm_password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid payload", env.Message)
}

func TestSignupPasswordMismatchResponse(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})

	w, env := s.doJSON(t, http.MethodPost, "/auth/signup", "", gin.H{
		"name": "Priya", "email": "priya@example.com", "password": "one1111", "confirm_password": "two2222",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "passwords do not match", env.Message)
}

func TestLoginBadCredentials(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})

	w, env := s.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", env.Message)
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})

	w, env := s.doJSON(t, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing access token", env.Message)

	w, env = s.doJSON(t, http.MethodGet, "/auth/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid access token", env.Message)

	expired := helpers.NewJWTManager("handler-test-secret", -time.Minute)
	tok, _, err := expired.GenerateToken(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	w, env = s.doJSON(t, http.MethodGet, "/auth/profile", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token expired", env.Message)
}

func TestProfileOmitsPasswordHash(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})
	token := s.signupAndLogin(t, "Priya", "priya@example.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), "$2a$", "bcrypt hash must never be serialized")

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	profile, ok := env.Data["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "priya@example.com", profile["email"])
	_, hasPassword := profile["password"]
	assert.False(t, hasPassword)
}

func TestUpdateProfileNoFieldsResponse(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})
	token := s.signupAndLogin(t, "Priya", "priya@example.com")

	w, env := s.doJSON(t, http.MethodPut, "/auth/profile", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no fields to update", env.Message)
}

func TestAnalyzeEndpointIsPublic(t *testing.T) {
	s := newTestServer(t, &stubInference{
		labels:      []string{"defect detected"},
		predictions: []entity.Prediction{{Label: "hole", Confidence: 0.77}},
	})

	w, env := s.doMultipart(t, "/inspection/analyze?location=line-1", "", "file", "cloth.jpg")
	require.Equal(t, http.StatusOK, w.Code)

	report, ok := env.Data["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Defect(s) detected", report["summary"])
	assert.Equal(t, "high", report["overall_severity"])
	preds, ok := env.Data["predictions"].([]any)
	require.True(t, ok)
	require.Len(t, preds, 1)
}

func TestAnalyzeRequiresFile(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})

	w, env := s.doMultipart(t, "/inspection/analyze", "", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file is required", env.Message)
}

func TestAnalyzeInferenceFailure(t *testing.T) {
	s := newTestServer(t, &stubInference{err: errors.New("endpoint down")})

	w, env := s.doMultipart(t, "/inspection/analyze", "", "file", "cloth.jpg")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "inference failed", env.Message)
}

func TestReportLifecycle(t *testing.T) {
	s := newTestServer(t, &stubInference{
		labels:      []string{"defect detected"},
		predictions: []entity.Prediction{{Label: "stain", Confidence: 0.64}},
	})
	token := s.signupAndLogin(t, "Priya", "priya@example.com")

	// Upload.
	w, env := s.doMultipart(t, "/report/upload?location=unit-4", token, "image", "roll.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Report saved", env.Data["message"])
	report, ok := env.Data["report"].(map[string]any)
	require.True(t, ok)
	reportID, _ := report["id"].(string)
	require.NotEmpty(t, reportID)
	assert.Equal(t, "unit-4", report["location"])
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/textile_images/x.jpg", report["image_url"])

	// List holds exactly the uploaded report.
	w, env = s.doJSON(t, http.MethodGet, "/report/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	reports, ok := env.Data["reports"].([]any)
	require.True(t, ok)
	require.Len(t, reports, 1)

	// Patch summary and archived.
	w, env = s.doJSON(t, http.MethodPatch, "/report/"+reportID, token, gin.H{
		"summary": "re-inspected, minor", "archived": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	patched := env.Data["report"].(map[string]any)
	assert.Equal(t, "re-inspected, minor", patched["description"].(map[string]any)["summary"])
	assert.Equal(t, true, patched["archived"])

	// Delete, then the list is empty and a second delete is a 404.
	w, env = s.doJSON(t, http.MethodDelete, "/report/"+reportID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Report deleted", env.Data["message"])

	w, env = s.doJSON(t, http.MethodGet, "/report/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Data["reports"])

	w, env = s.doJSON(t, http.MethodDelete, "/report/"+reportID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "report not found", env.Message)
}

func TestReportCrossUserIsolation(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})
	owner := s.signupAndLogin(t, "Owner", "owner@example.com")
	intruder := s.signupAndLogin(t, "Intruder", "intruder@example.com")

	w, env := s.doMultipart(t, "/report/upload", owner, "image", "roll.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	reportID := env.Data["report"].(map[string]any)["id"].(string)

	// The other user cannot see, patch or delete it.
	w, env = s.doJSON(t, http.MethodGet, "/report/", intruder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Data["reports"])

	w, env = s.doJSON(t, http.MethodPatch, "/report/"+reportID, intruder, gin.H{"archived": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "report not found", env.Message)

	w, env = s.doJSON(t, http.MethodDelete, "/report/"+reportID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Still intact for the owner.
	w, env = s.doJSON(t, http.MethodGet, "/report/", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.Data["reports"], 1)
}

func TestReportUpdateBadID(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})
	token := s.signupAndLogin(t, "Priya", "priya@example.com")

	w, env := s.doJSON(t, http.MethodPatch, "/report/not-an-object-id", token, gin.H{"archived": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid report id", env.Message)
}

func TestReportUpdateEmptyPatchResponse(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})
	token := s.signupAndLogin(t, "Priya", "priya@example.com")

	// Empty patch on an owned report is a 400.
	w, env := s.doMultipart(t, "/report/upload", token, "image", "roll.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	reportID := env.Data["report"].(map[string]any)["id"].(string)

	w, env = s.doJSON(t, http.MethodPatch, fmt.Sprintf("/report/%s", reportID), token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no fields provided", env.Message)

	// Empty patch on a missing report is a 404, not a 400.
	w, env = s.doJSON(t, http.MethodPatch, "/report/"+primitive.NewObjectID().Hex(), token, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "report not found", env.Message)
}

func TestReportUploadRequiresImage(t *testing.T) {
	s := newTestServer(t, &stubInference{labels: []string{"defect free"}})
	token := s.signupAndLogin(t, "Priya", "priya@example.com")

	w, env := s.doMultipart(t, "/report/upload", token, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "image is required", env.Message)
}
