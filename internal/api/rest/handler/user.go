package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/identity"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// ProfileService defines the current-user profile operations.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (model.User, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, reader io.Reader, size int64) error
	DownloadAvatar(ctx context.Context, userID uuid.UUID) (io.ReadCloser, string, error)
}

// User handles the /api/users/me endpoints.
type User struct {
	profiles ProfileService
	logger   *logger.Logger
}

func NewUser(profiles ProfileService, logger *logger.Logger) *User {
	return &User{profiles: profiles, logger: logger}
}

// Me returns the authenticated user's profile.
func (h *User) Me(c *gin.Context) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
		return
	}

	user, err := h.profiles.Get(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, toUserResponse(user))
}

// UpdateMe changes the display name.
func (h *User) UpdateMe(c *gin.Context) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "name required"})
		return
	}

	user, err := h.profiles.UpdateName(c.Request.Context(), id.UserID, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, toUserResponse(user))
}

// UploadAvatar stores the avatar from a multipart form field named
// "avatar".
func (h *User) UploadAvatar(c *gin.Context) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "avatar file required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.profiles.UploadAvatar(c.Request.Context(), id.UserID, contentType, file, fileHeader.Size); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c)
}

// DownloadAvatar streams the avatar back with its stored content type.
func (h *User) DownloadAvatar(c *gin.Context) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
		return
	}

	reader, contentType, err := h.profiles.DownloadAvatar(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Error("User handler: failed to stream avatar", "error", err.Error())
	}
}
