package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pulse-api/internal/domain/entity"
	"pulse-api/internal/domain/repository"
)

// UserRepository is the MongoDB-backed credential store.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// activeOnly excludes soft-deactivated accounts from every lookup.
func activeOnly(filter bson.D) bson.D {
	return append(filter, bson.E{Key: "active", Value: bson.D{{Key: "$ne", Value: false}}})
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	return insertOne(ctx, r.store.col(ColUsers), u)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.store.col(ColUsers), activeOnly(bson.D{{Key: "_id", Value: id}}))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.store.col(ColUsers), activeOnly(bson.D{{Key: "email", Value: email}}))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.store.col(ColUsers), activeOnly(bson.D{{Key: "username", Value: username}}))
}

func (r *UserRepository) GetByResetDigest(ctx context.Context, digest string, notBefore time.Time) (*entity.User, error) {
	filter := activeOnly(bson.D{
		{Key: "password_reset_token", Value: digest},
		{Key: "password_reset_expires", Value: bson.D{{Key: "$gt", Value: notBefore}}},
	})
	return findOne[entity.User](ctx, r.store.col(ColUsers), filter)
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, patch map[string]any) error {
	withTS := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		withTS[k] = v
	}
	withTS["updated_at"] = time.Now().UTC()
	return updateByID(ctx, r.store.col(ColUsers), id, withTS)
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[entity.User](ctx, r.store.col(ColUsers), activeOnly(bson.D{}), opts)
}

var _ repository.UserRepository = (*UserRepository)(nil)
