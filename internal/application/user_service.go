package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/repository"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoUpdateFields     = errors.New("no fields to update")
)

// UserService implements signup, login and profile maintenance over the user
// directory.
type UserService struct {
	Repo   repository.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Logger: logger}
}

// Signup validates the confirmation password, enforces email uniqueness and
// persists a new user with a bcrypt password hash. Email matching is
// case-sensitive exact.
func (s *UserService) Signup(ctx context.Context, name, email, password, confirm string) (string, error) {
	if password != confirm {
		return "", ErrPasswordMismatch
	}
	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if existing != nil {
		return "", ErrEmailTaken
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return "", err
	}
	u := &entity.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.Repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", id).Info("user created")
	}
	return id, nil
}

// TokenResult is the issued session credential plus its lifetime.
type TokenResult struct {
	AccessToken string
	ExpiresIn   int // seconds
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	token, _, err := s.JWT.GenerateToken(u.ID.Hex())
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Error("generate access token failed")
		}
		return nil, err
	}
	return &TokenResult{AccessToken: token, ExpiresIn: int(s.JWT.TTL.Seconds())}, nil
}

// GetProfile returns the stored record for an already-authenticated caller.
// The password hash stays on the entity but is never serialized out.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfileInput carries the optional profile mutations. Empty strings
// mean "leave unchanged".
type UpdateProfileInput struct {
	Name     string
	Password string
}

// UpdateProfile applies only the provided fields; a new password is re-hashed
// before it reaches the repository.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) error {
	upd := entity.UserUpdate{Name: in.Name}
	if in.Password != "" {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return err
		}
		upd.PasswordHash = hash
	}
	if upd.Name == "" && upd.PasswordHash == "" {
		return ErrNoUpdateFields
	}
	if err := s.Repo.Update(ctx, userID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
