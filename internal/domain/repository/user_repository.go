package repository

import (
	"context"
	"errors"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an id is not a valid object id.
	ErrInvalidID = errors.New("invalid id")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)

// UserRepository defines the interface for user-related persistence operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) (string, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, id string, upd entity.UserUpdate) error
}
