package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pulse-api/internal/application"
	"pulse-api/internal/interface/middleware"
	"pulse-api/pkg/response"
	"pulse-api/pkg/validation"
)

// UserHandler exposes the profile surface guarded by the auth middleware.
type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateMeRequest struct {
	Username string `json:"username" form:"username" binding:"omitempty,handle"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	Bio      string `json:"bio" form:"bio"`

	// Bound only to detect misuse; password changes go through
	// /updateMyPassword so the rotation pipeline always runs.
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

// GetMe GET /users/me (protected)
func (h *UserHandler) GetMe(c *gin.Context) {
	u := middleware.CurrentUser(c)
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile")
}

// UpdateMe PATCH /users/updateMe (protected). Accepts JSON or multipart with
// an optional "file" photo upload.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	var req updateMeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		response.Error(c, http.StatusBadRequest, "this route is not for password updates, please use /updateMyPassword", nil)
		return
	}

	patch := map[string]any{}
	if req.Username != "" {
		patch["username"] = req.Username
	}
	if req.Email != "" {
		patch["email"] = req.Email
	}
	if req.Bio != "" {
		patch["bio"] = req.Bio
	}

	if file, err := c.FormFile("file"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "unreadable upload", nil)
			return
		}
		defer func() { _ = f.Close() }()
		url, err := h.Svc.UploadPhoto(c.Request.Context(), uid, f, file.Filename, file.Header.Get("Content-Type"))
		if err != nil {
			fail(c, err)
			return
		}
		patch["photo"] = url
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, patch)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile updated")
}

// DeleteMe DELETE /users/deleteMe (protected)
func (h *UserHandler) DeleteMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Deactivate(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUser GET /users/:id (protected)
func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "user")
}

// ListUsers GET /users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": len(users), "users": users}, "users")
}

// Search GET /users/search?q= (admin)
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "missing query parameter q", nil)
		return
	}
	hits, err := h.Svc.Indexer.SearchUsers(c.Request.Context(), q, 10)
	if err != nil {
		h.Logger.WithError(err).Warn("user search failed")
		response.Error(c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": len(hits), "users": hits}, "search results")
}
