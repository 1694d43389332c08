package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"pulse-api/internal/application"
	"pulse-api/internal/container"
	handlers "pulse-api/internal/interface/http"
	"pulse-api/internal/interface/middleware"
)

// AuthModule registers the public authentication endpoints plus the
// authenticated password-change route.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    *application.AuthService
}

func NewAuthModule(h *handlers.AuthHandler, auth *application.AuthService) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	signupLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.GET("/users/logout", m.Handler.Logout)
	rg.GET("/users/sessionStatus", middleware.IsLoggedIn(m.Auth), m.Handler.SessionStatus)

	rg.GET("/users/verification/:token", m.Handler.VerifyEmail)
	rg.POST("/users/forgotPassword", forgotLimiter, m.Handler.ForgotPassword)
	rg.GET("/users/resetPasswordLink/:token", resetLimiter, m.Handler.ValidateResetToken)
	rg.PATCH("/users/resetPassword/:token", resetLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.Auth))
	auth.Use(middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.PATCH("/users/updateMyPassword", m.Handler.UpdatePassword)
	}
}
