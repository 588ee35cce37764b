package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
)

type AvatarHandler struct {
	BaseHandler
	avatarService services.AvatarService
}

func NewAvatarHandler(avatarService services.AvatarService, logger utils.Logger) *AvatarHandler {
	return &AvatarHandler{
		BaseHandler:   NewBaseHandler(logger),
		avatarService: avatarService,
	}
}

// UploadAvatar stores the PNG sent as the "file" part of a multipart form.
func (h *AvatarHandler) UploadAvatar(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
		return
	}
	defer src.Close()

	err = h.avatarService.Upload(c.Request.Context(), id, GetUserFromContext(c), src, fileHeader.Size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar_url": fmt.Sprintf("%s/users/%d/avatar", requestBaseURL(c), id),
	})
}

// GetAvatar streams the stored PNG.
func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	rc, err := h.avatarService.Download(c.Request.Context(), id, GetUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.LogError(c, err, "failed to stream avatar", "user_id", id)
	}
}

func (h *AvatarHandler) DeleteAvatar(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.avatarService.Delete(c.Request.Context(), id, GetUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
