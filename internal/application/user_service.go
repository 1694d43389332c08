package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pulse-api/internal/domain/apperror"
	"pulse-api/internal/domain/entity"
	"pulse-api/internal/domain/repository"
	"pulse-api/pkg/helpers"
)

// UserService covers the profile surface the auth middleware guards.
type UserService struct {
	Repo      repository.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Indexer   *UserIndexer
	Logger    *logrus.Logger
}

func NewUserService(repo repository.UserRepository, gcs *storage.Client, gcsBucket string, indexer *UserIndexer, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, GCS: gcs, GCSBucket: gcsBucket, Indexer: indexer, Logger: logger}
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "user listing failed", err)
	}
	return users, nil
}

// UpdateProfile patches a user's own profile. The patch is filtered against
// the entity's fixed allow-list, so a crafted payload cannot reach fields
// owned by other flows (role, password, verification state).
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch map[string]any) (*entity.User, error) {
	filtered := filterAllowed(patch, entity.UpdatableFields)
	if len(filtered) == 0 {
		return nil, apperror.New(apperror.KindValidation, "no updatable fields in request")
	}
	if err := s.Repo.UpdateFields(ctx, id, filtered); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.New(apperror.KindConflict, msgDuplicateUser)
		}
		return nil, apperror.Wrap(apperror.KindDependency, "profile update failed", err)
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	s.Indexer.IndexUser(ctx, u)
	return u, nil
}

// UploadPhoto stores a profile photo in GCS and patches the photo URL.
func (s *UserService) UploadPhoto(ctx context.Context, id string, r io.Reader, filename, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperror.New(apperror.KindValidation, "not an image, please upload only images")
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperror.New(apperror.KindDependency, "object storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("photos", id, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", apperror.Wrap(apperror.KindDependency, "photo upload failed", err)
	}
	if err := s.Repo.UpdateFields(ctx, id, map[string]any{"photo": url}); err != nil {
		return "", apperror.Wrap(apperror.KindDependency, "profile update failed", err)
	}
	return url, nil
}

// Deactivate soft-deletes the account; lookups stop returning it but the
// document is never hard-deleted here.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if err := s.Repo.UpdateFields(ctx, id, map[string]any{"active": false}); err != nil {
		return apperror.Wrap(apperror.KindDependency, "deactivation failed", err)
	}
	s.Logger.WithField("user_id", id).Info("account deactivated")
	return nil
}

// filterAllowed keeps only the patch keys present in the allow-list.
func filterAllowed(patch map[string]any, allowed []string) map[string]any {
	out := make(map[string]any, len(patch))
	for _, k := range allowed {
		if v, ok := patch[k]; ok {
			out[k] = v
		}
	}
	return out
}
