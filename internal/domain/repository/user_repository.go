package repository

import (
	"context"
	"errors"
	"time"

	"pulse-api/internal/domain/entity"
)

// Sentinel errors every implementation maps its driver errors onto.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository is the credential-store collaborator. Updates apply partial
// field patches without re-validating untouched fields; lookups never return
// soft-deactivated records.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// GetByResetDigest matches a stored reset-token digest that expires
	// after the given instant. Expired matches are indistinguishable from
	// no match.
	GetByResetDigest(ctx context.Context, digest string, notBefore time.Time) (*entity.User, error)
	// UpdateFields patches the given fields on the user document.
	UpdateFields(ctx context.Context, id string, patch map[string]any) error
	List(ctx context.Context) ([]*entity.User, error)
}
