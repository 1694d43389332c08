package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pulse-api/internal/domain/apperror"
	"pulse-api/internal/domain/entity"
	"pulse-api/internal/domain/repository"
	"pulse-api/pkg/helpers"
	"pulse-api/pkg/mailer"
)

// Client-facing messages. Unknown email and wrong password share one message
// so login cannot be used as an account-existence probe; the reset path
// likewise reports expired and unknown tokens identically.
const (
	msgBadCredentials  = "incorrect email or password"
	msgPendingVerify   = "please verify your email to log in"
	msgNotLoggedIn     = "you are not logged in, please log in to get access"
	msgUserGone        = "the user belonging to this token does no longer exist"
	msgPasswordRotated = "password was recently changed, please log in again"
	msgBadResetToken   = "token is invalid or has expired"
	msgMailFailed      = "there was an error sending the email, try again later"
	msgDuplicateUser   = "username or email already exists"
	msgWrongCurrentPwd = "your current password is wrong"
)

// AuthService is the authentication/session core: credential hashing, token
// issuance and resolution, the reset-token lifecycle, and email verification.
type AuthService struct {
	Repo   repository.UserRepository
	Hasher *helpers.PasswordHasher
	Tokens *helpers.TokenManager
	Mailer mailer.Mailer
	Pub    *helpers.RabbitPublisher // advisory notices only; nil disables
	Logger *logrus.Logger

	// Indexer mirrors new profiles into the search index; nil disables.
	Indexer *UserIndexer

	// RequireVerification gates the verification-email step at signup and
	// the verification check at login. One flag, not two code paths.
	RequireVerification bool
	ResetTokenTTL       time.Duration
	ResetPasswordURL    string
	VerifyEmailURL      string

	// now is the clock for reset-token expiry windows; tests override it.
	now func() time.Time
}

func NewAuthService(
	repo repository.UserRepository,
	hasher *helpers.PasswordHasher,
	tokens *helpers.TokenManager,
	m mailer.Mailer,
	pub *helpers.RabbitPublisher,
	logger *logrus.Logger,
	requireVerification bool,
	resetTokenTTL time.Duration,
	resetPasswordURL, verifyEmailURL string,
) *AuthService {
	return &AuthService{
		Repo:                repo,
		Hasher:              hasher,
		Tokens:              tokens,
		Mailer:              m,
		Pub:                 pub,
		Logger:              logger,
		RequireVerification: requireVerification,
		ResetTokenTTL:       resetTokenTTL,
		ResetPasswordURL:    resetPasswordURL,
		VerifyEmailURL:      verifyEmailURL,
		now:                 time.Now,
	}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates an account. The plaintext is hashed before the document is
// first persisted; the confirmation field never reaches this layer. Both
// username and email uniqueness are checked up front, and the unique indexes
// close the race window.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, string, error) {
	if _, err := s.Repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, "", apperror.New(apperror.KindConflict, msgDuplicateUser)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperror.Wrap(apperror.KindDependency, "user lookup failed", err)
	}
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", apperror.New(apperror.KindConflict, msgDuplicateUser)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperror.Wrap(apperror.KindDependency, "user lookup failed", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, "", apperror.Wrap(apperror.KindDependency, "password hashing failed", err)
	}

	handle, err := newPublicHandle()
	if err != nil {
		return nil, "", apperror.Wrap(apperror.KindDependency, "handle generation failed", err)
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		UserID:       handle,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
		Photo:        "default.jpg",
		Active:       true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperror.New(apperror.KindConflict, msgDuplicateUser)
		}
		return nil, "", apperror.Wrap(apperror.KindDependency, "user creation failed", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.UserID, "email": u.Email}).Info("user created")
	s.Indexer.IndexUser(ctx, u)

	if s.RequireVerification {
		verifyToken, _, err := s.Tokens.IssueVerification(u.ID)
		if err != nil {
			return nil, "", apperror.Wrap(apperror.KindDependency, "verification token failed", err)
		}
		verifyURL := s.VerifyEmailURL + "?token=" + verifyToken
		to := mailer.Recipient{Username: u.Username, Email: u.Email}
		if err := s.Mailer.SendWelcome(ctx, to, verifyURL); err != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("welcome email failed")
			return nil, "", apperror.Wrap(apperror.KindDependency, msgMailFailed, err)
		}
	}

	token, _, err := s.Tokens.IssueSession(u.ID)
	if err != nil {
		return nil, "", apperror.Wrap(apperror.KindDependency, "token signing failed", err)
	}
	return u, token, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperror.New(apperror.KindValidation, "please provide email and password")
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || !s.Hasher.Verify(password, u.PasswordHash) {
		// Same failure for unknown email and wrong password.
		return nil, "", apperror.New(apperror.KindAuthentication, msgBadCredentials)
	}
	if s.RequireVerification && !u.IsVerified {
		return nil, "", apperror.New(apperror.KindAuthorization, msgPendingVerify)
	}

	token, _, err := s.Tokens.IssueSession(u.ID)
	if err != nil {
		return nil, "", apperror.Wrap(apperror.KindDependency, "token signing failed", err)
	}
	s.Logger.WithField("email", u.Email).Info("user logged in")
	return u, token, nil
}

// CurrentUser resolves a session token to a live user record. The token's
// claims are never trusted beyond the subject id: the record is re-fetched,
// and the token is rejected when the credential was rotated after its issue
// time.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.Tokens.VerifySession(token)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindAuthentication, msgNotLoggedIn, err)
	}
	u, err := s.Repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperror.New(apperror.KindAuthentication, msgUserGone)
	}
	if u.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, apperror.New(apperror.KindAuthentication, msgPasswordRotated)
	}
	return u, nil
}

// ForgotPassword issues a reset token for a known email and mails the raw
// secret. Issuing a new token supersedes any previous one. If the mail
// dispatch fails the just-written state is rolled back so no orphaned valid
// token survives that the user never received.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "there is no user with that email address")
	}

	raw, digest, err := helpers.NewResetToken()
	if err != nil {
		return apperror.Wrap(apperror.KindDependency, "reset token generation failed", err)
	}
	expires := s.now().UTC().Add(s.ResetTokenTTL)
	if err := s.Repo.UpdateFields(ctx, u.ID, map[string]any{
		"password_reset_token":   digest,
		"password_reset_expires": expires,
	}); err != nil {
		return apperror.Wrap(apperror.KindDependency, "reset token persistence failed", err)
	}

	resetURL := s.ResetPasswordURL + "?token=" + raw
	to := mailer.Recipient{Username: u.Username, Email: u.Email}
	if err := s.Mailer.SendPasswordReset(ctx, to, resetURL, s.ResetTokenTTL); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Error("reset email failed")
		// Roll back so the stored digest cannot outlive the email it was
		// never delivered in.
		if rbErr := s.Repo.UpdateFields(ctx, u.ID, map[string]any{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}); rbErr != nil {
			s.Logger.WithError(rbErr).WithField("user_id", u.ID).Error("reset token rollback failed")
		}
		return apperror.Wrap(apperror.KindDependency, msgMailFailed, err)
	}
	return nil
}

// ValidateResetToken probes a raw reset secret without consuming it.
func (s *AuthService) ValidateResetToken(ctx context.Context, raw string) error {
	_, err := s.lookupByResetToken(ctx, raw)
	return err
}

// ResetPassword consumes a reset token: the new password is hashed and the
// hash, the backdated rotation timestamp, and the cleared reset fields are
// written in one patch. A fresh session token is issued to the caller.
func (s *AuthService) ResetPassword(ctx context.Context, raw, newPassword string) (*entity.User, string, error) {
	u, err := s.lookupByResetToken(ctx, raw)
	if err != nil {
		return nil, "", err
	}
	token, err := s.rotatePassword(ctx, u, newPassword)
	if err != nil {
		return nil, "", err
	}
	s.Logger.WithField("email", u.Email).Info("password reset completed")
	return u, token, nil
}

// UpdatePassword rotates the credential of an authenticated user after
// re-checking the current password.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*entity.User, string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", apperror.New(apperror.KindAuthentication, msgUserGone)
	}
	if !s.Hasher.Verify(currentPassword, u.PasswordHash) {
		return nil, "", apperror.New(apperror.KindAuthentication, msgWrongCurrentPwd)
	}
	token, err := s.rotatePassword(ctx, u, newPassword)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// VerifyEmail flips is_verified using the short-lived verification token from
// the welcome email.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.Tokens.VerifyVerification(token)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, msgBadResetToken, err)
	}
	if _, err := s.Repo.GetByID(ctx, claims.Subject); err != nil {
		return apperror.New(apperror.KindNotFound, msgUserGone)
	}
	if err := s.Repo.UpdateFields(ctx, claims.Subject, map[string]any{"is_verified": true}); err != nil {
		return apperror.Wrap(apperror.KindDependency, "verification update failed", err)
	}
	return nil
}

func (s *AuthService) lookupByResetToken(ctx context.Context, raw string) (*entity.User, error) {
	digest := helpers.HashResetToken(raw)
	u, err := s.Repo.GetByResetDigest(ctx, digest, s.now().UTC())
	if err != nil {
		// Expired and unknown digests are indistinguishable to the caller.
		return nil, apperror.New(apperror.KindValidation, msgBadResetToken)
	}
	return u, nil
}

// rotatePassword hashes the new credential, persists it together with the
// backdated password_changed_at and cleared reset state, then issues a fresh
// session token. Every token signed before this write is now invalid.
func (s *AuthService) rotatePassword(ctx context.Context, u *entity.User, newPassword string) (string, error) {
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return "", apperror.Wrap(apperror.KindDependency, "password hashing failed", err)
	}
	// Backdate one second so a token signed in the same instant as the
	// write does not survive the rotation check.
	changedAt := s.now().UTC().Add(-time.Second)
	if err := s.Repo.UpdateFields(ctx, u.ID, map[string]any{
		"password":               hash,
		"password_changed_at":    changedAt,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}); err != nil {
		return "", apperror.Wrap(apperror.KindDependency, "password update failed", err)
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = changedAt
	u.PasswordResetToken = ""
	u.PasswordResetExpires = time.Time{}

	s.notifyPasswordChanged(ctx, u)

	token, _, err := s.Tokens.IssueSession(u.ID)
	if err != nil {
		return "", apperror.Wrap(apperror.KindDependency, "token signing failed", err)
	}
	return token, nil
}

// notifyPasswordChanged queues an advisory notice. Best effort: the rotation
// already happened, so a queue outage only costs the courtesy email.
func (s *AuthService) notifyPasswordChanged(ctx context.Context, u *entity.User) {
	if s.Pub == nil {
		return
	}
	job := mailer.PasswordChangedJob(mailer.Recipient{Username: u.Username, Email: u.Email})
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("password change notice not queued")
	}
}

// newPublicHandle produces the short public id carried in URLs, 3 random
// bytes hex encoded.
func newPublicHandle() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
