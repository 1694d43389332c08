package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A verification token must not be usable as a session token
// and vice versa.
const (
	PurposeSession = "session"
	PurposeVerify  = "verify"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies stateless HS256 tokens. There is no
// revocation list: the compromise window is bounded by the expiry claim, and
// credential rotation is enforced at session-resolution time by comparing the
// token's IssuedAt against the user's passwordChangedAt.
type TokenManager struct {
	Secret     []byte
	SessionTTL time.Duration
	VerifyTTL  time.Duration

	// Now is the clock used for both signing and expiry checks; tests
	// override it to simulate elapsed time.
	Now func() time.Time
}

func NewTokenManager(secret string, sessionTTL, verifyTTL time.Duration) *TokenManager {
	return &TokenManager{
		Secret:     []byte(secret),
		SessionTTL: sessionTTL,
		VerifyTTL:  verifyTTL,
		Now:        time.Now,
	}
}

type Claims struct {
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// IssueSession creates a signed session token for the given subject id.
func (m *TokenManager) IssueSession(subjectID string) (string, time.Time, error) {
	return m.issue(subjectID, PurposeSession, m.SessionTTL)
}

// IssueVerification creates a short-lived email-verification token, distinct
// from the session token.
func (m *TokenManager) IssueVerification(subjectID string) (string, time.Time, error) {
	return m.issue(subjectID, PurposeVerify, m.VerifyTTL)
}

func (m *TokenManager) issue(subjectID, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := m.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// VerifySession parses and validates a session token, returning its claims.
// Fails on bad signature, malformed input, wrong purpose, or elapsed expiry.
func (m *TokenManager) VerifySession(token string) (*Claims, error) {
	return m.parse(token, PurposeSession)
}

// VerifyVerification validates an email-verification token.
func (m *TokenManager) VerifyVerification(token string) (*Claims, error) {
	return m.parse(token, PurposeVerify)
}

func (m *TokenManager) parse(tokenStr, purpose string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.Now() }))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
