package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pulse-api/internal/domain/entity"
	"pulse-api/internal/domain/repository"
	"pulse-api/pkg/mailer"
)

// memRepo is an in-memory UserRepository with the same patch semantics as the
// MongoDB implementation: nil patch values clear the field, lookups skip
// deactivated accounts.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*entity.User)}
}

func clone(u *entity.User) *entity.User {
	cp := *u
	return &cp
}

func (r *memRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username || existing.UserID == u.UserID {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = clone(u)
	return nil
}

func (r *memRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Active && match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *memRepo) GetByResetDigest(_ context.Context, digest string, notBefore time.Time) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.PasswordResetToken == digest && u.PasswordResetExpires.After(notBefore)
	})
}

func (r *memRepo) UpdateFields(_ context.Context, id string, patch map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range patch {
		switch k {
		case "username":
			u.Username = v.(string)
		case "email":
			u.Email = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "photo":
			u.Photo = v.(string)
		case "password":
			u.PasswordHash = v.(string)
		case "password_changed_at":
			u.PasswordChangedAt = v.(time.Time)
		case "password_reset_token":
			if v == nil {
				u.PasswordResetToken = ""
			} else {
				u.PasswordResetToken = v.(string)
			}
		case "password_reset_expires":
			if v == nil {
				u.PasswordResetExpires = time.Time{}
			} else {
				u.PasswordResetExpires = v.(time.Time)
			}
		case "is_verified":
			u.IsVerified = v.(bool)
		case "active":
			u.Active = v.(bool)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memRepo) List(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Active {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

var _ repository.UserRepository = (*memRepo)(nil)

// fakeMailer records dispatched mail and can be told to fail.
type fakeMailer struct {
	mu         sync.Mutex
	failNext   error
	welcomes   []string // verification URLs
	resets     []string // reset URLs
	recipients []string
}

func (m *fakeMailer) SendWelcome(_ context.Context, to mailer.Recipient, verificationURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.welcomes = append(m.welcomes, verificationURL)
	m.recipients = append(m.recipients, to.Email)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to mailer.Recipient, resetURL string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.resets = append(m.resets, resetURL)
	m.recipients = append(m.recipients, to.Email)
	return nil
}

func (m *fakeMailer) lastResetSecret() string {
	secrets := m.resetSecrets()
	if len(secrets) == 0 {
		return ""
	}
	return secrets[len(secrets)-1]
}

// resetSecrets returns every raw secret mailed so far, in dispatch order.
func (m *fakeMailer) resetSecrets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.resets))
	for _, u := range m.resets {
		if _, raw, ok := strings.Cut(u, "token="); ok {
			out = append(out, raw)
		}
	}
	return out
}

var _ mailer.Mailer = (*fakeMailer)(nil)

var errMailDown = errors.New("smtp relay unreachable")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
