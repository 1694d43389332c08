package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"pulse-api/internal/application"
	"pulse-api/internal/container"
	"pulse-api/internal/domain/entity"
	handlers "pulse-api/internal/interface/http"
	"pulse-api/internal/interface/middleware"
)

// UserModule registers the profile routes. Everything here requires a
// session; the listing and search routes additionally require the admin role.
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *application.AuthService
}

func NewUserModule(h *handlers.UserHandler, auth *application.AuthService) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.Auth))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users/me", m.Handler.GetMe)
		auth.PATCH("/users/updateMe", m.Handler.UpdateMe)
		auth.DELETE("/users/deleteMe", m.Handler.DeleteMe)

		admin := auth.Group("/")
		admin.Use(middleware.RestrictTo(entity.RoleAdmin))
		{
			admin.GET("/users", m.Handler.ListUsers)
			admin.GET("/users/search", m.Handler.Search)
			admin.GET("/users/:id", m.Handler.GetUser)
		}
	}
}
