package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pulse-api/internal/application"
	"pulse-api/internal/domain/entity"
	"pulse-api/internal/domain/repository"
	"pulse-api/internal/interface/middleware"
	"pulse-api/pkg/helpers"
	"pulse-api/pkg/mailer"
	"pulse-api/pkg/response"
	"pulse-api/pkg/validation"
)

var initOnce sync.Once

// fakeUserRepo is an in-memory UserRepository mirroring the MongoDB
// implementation's semantics: nil patch values clear fields, deactivated
// accounts are invisible to lookups.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email || e.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Active && match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByResetDigest(_ context.Context, digest string, notBefore time.Time) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.PasswordResetToken == digest && u.PasswordResetExpires.After(notBefore)
	})
}

func (r *fakeUserRepo) UpdateFields(_ context.Context, id string, patch map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	// Mirror the unique indexes on username and email.
	for _, other := range r.users {
		if other.ID == id {
			continue
		}
		if v, ok := patch["username"]; ok && other.Username == v.(string) {
			return repository.ErrDuplicate
		}
		if v, ok := patch["email"]; ok && other.Email == v.(string) {
			return repository.ErrDuplicate
		}
	}
	for k, v := range patch {
		switch k {
		case "username":
			u.Username = v.(string)
		case "email":
			u.Email = v.(string)
		case "role":
			u.Role = v.(string)
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
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Active {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

// captureMailer records outgoing mail instead of sending it.
type captureMailer struct {
	mu       sync.Mutex
	failNext bool
	welcomes []string
	resets   []string
}

func (m *captureMailer) SendWelcome(_ context.Context, _ mailer.Recipient, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errSMTPDown
	}
	m.welcomes = append(m.welcomes, url)
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _ mailer.Recipient, url string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errSMTPDown
	}
	m.resets = append(m.resets, url)
	return nil
}

func (m *captureMailer) lastToken(urls []string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(urls) == 0 {
		return ""
	}
	parts := strings.SplitN(urls[len(urls)-1], "token=", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func (m *captureMailer) lastResetToken() string   { return m.lastToken(m.resets) }
func (m *captureMailer) lastWelcomeToken() string { return m.lastToken(m.welcomes) }

var errSMTPDown = smtpDownError{}

type smtpDownError struct{}

func (smtpDownError) Error() string { return "smtp relay unreachable" }

// testEnv is one wired API instance backed by in-memory fakes.
type testEnv struct {
	router *gin.Engine
	repo   *fakeUserRepo
	mail   *captureMailer
	auth   *application.AuthService
}

func newTestEnv(t *testing.T, requireVerification bool) *testEnv {
	t.Helper()
	initOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	repo := newFakeUserRepo()
	mail := &captureMailer{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	authSvc := application.NewAuthService(
		repo,
		helpers.NewPasswordHasher(bcrypt.MinCost),
		helpers.NewTokenManager("test-secret", time.Hour, 15*time.Minute),
		mail,
		nil,
		logger,
		requireVerification,
		10*time.Minute,
		"https://pulse.test/reset-password",
		"https://pulse.test/verify-email",
	)
	userSvc := application.NewUserService(repo, nil, "", nil, logger)

	cookies := helpers.NewCookieManager("", false, 90)
	ah := NewAuthHandler(authSvc, logger, cookies)
	uh := NewUserHandler(userSvc, logger)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/users/signup", ah.Signup)
	api.POST("/users/login", ah.Login)
	api.GET("/users/logout", ah.Logout)
	api.GET("/users/sessionStatus", middleware.IsLoggedIn(authSvc), ah.SessionStatus)
	api.GET("/users/verification/:token", ah.VerifyEmail)
	api.POST("/users/forgotPassword", ah.ForgotPassword)
	api.GET("/users/resetPasswordLink/:token", ah.ValidateResetToken)
	api.PATCH("/users/resetPassword/:token", ah.ResetPassword)

	protected := api.Group("", middleware.Protect(authSvc))
	protected.PATCH("/users/updateMyPassword", ah.UpdatePassword)
	protected.GET("/users/me", uh.GetMe)
	protected.PATCH("/users/updateMe", uh.UpdateMe)
	protected.DELETE("/users/deleteMe", uh.DeleteMe)

	admin := protected.Group("", middleware.RestrictTo(entity.RoleAdmin))
	admin.GET("/users", uh.ListUsers)
	admin.GET("/users/search", uh.Search)
	admin.GET("/users/:id", uh.GetUser)

	return &testEnv{router: r, repo: repo, mail: mail, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env response.Envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// signup registers a user through the API and returns its session token.
func (e *testEnv) signup(t *testing.T, username, email, password string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/v1/users/signup", "", gin.H{
		"username":         username,
		"email":            email,
		"password":         password,
		"password_confirm": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, "signup body: %s", w.Body.String())
	data := env.Data.(map[string]any)
	return data["token"].(string)
}
