package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pulse-api/internal/application"
	"pulse-api/internal/domain/apperror"
	"pulse-api/internal/domain/entity"
	"pulse-api/internal/interface/middleware"
	"pulse-api/pkg/helpers"
	"pulse-api/pkg/response"
	"pulse-api/pkg/validation"
)

// AuthHandler exposes the authentication core over HTTP.
type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookies *helpers.CookieManager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies}
}

type signupRequest struct {
	Username        string `json:"username" binding:"required,handle"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"password_current" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// fail translates a service error into the response envelope.
func fail(c *gin.Context, err error) {
	response.Error(c, apperror.HTTPStatus(err), apperror.Message(err), nil)
}

// sendToken writes the session cookie and the standard token+user payload.
// The entity's json tags keep the credential and reset state out of the body.
func (h *AuthHandler) sendToken(c *gin.Context, status int, u *entity.User, token, message string) {
	h.Cookies.SetSession(c, token)
	response.Success(c, status, gin.H{"token": token, "user": u}, message)
}

// Signup POST /users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, u, token, "user created")
}

// Login POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "please provide email and password", validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u, token, "login successful")
}

// SessionStatus GET /users/sessionStatus. Runs behind the soft IsLoggedIn
// probe: browser clients poll it to decide what to render, so an absent or
// stale cookie answers logged_in=false instead of an error.
func (h *AuthHandler) SessionStatus(c *gin.Context) {
	if u := middleware.CurrentUser(c); u != nil {
		response.Success(c, http.StatusOK, gin.H{"logged_in": true, "user": u}, "session active")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_in": false}, "no active session")
}

// Logout GET /users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.ClearSession(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// VerifyEmail GET /users/verification/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.Svc.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified")
}

// ForgotPassword POST /users/forgotPassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "token sent to email")
}

// ValidateResetToken GET /users/resetPasswordLink/:token
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	if err := h.Svc.ValidateResetToken(c.Request.Context(), c.Param("token")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": true}, "token is valid")
}

// ResetPassword PATCH /users/resetPassword/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u, token, "password updated")
}

// UpdatePassword PATCH /users/updateMyPassword (protected)
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	u, token, err := h.Svc.UpdatePassword(c.Request.Context(), uid, req.PasswordCurrent, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u, token, "password updated")
}
