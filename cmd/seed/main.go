package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"pulse-api/config"
	"pulse-api/internal/domain/entity"
	"pulse-api/internal/domain/repository"
	"pulse-api/internal/infrastructure/mongodb"
	"pulse-api/pkg/helpers"
)

// Seeds a verified admin account for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := mongodb.NewStore(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = store.Close() }()

	repo := mongodb.NewUserRepository(store)
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := "admin@pulse.local"
	password := "password123"

	if existing, err := repo.GetByEmail(ctx, email); err == nil {
		fmt.Printf("admin already seeded: id=%s email=%s\n", existing.ID, existing.Email)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("lookup failed: %v", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		UserID:       "admin1",
		Username:     "pulseAdmin",
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		IsVerified:   true,
		Photo:        "default.jpg",
		Active:       true,
	}
	if err := repo.Create(ctx, u); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", u.ID, email, password)
}
