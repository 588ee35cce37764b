package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is used by endpoints that return no resource body.
type SuccessResponse struct {
	Message string `json:"message"`
}

// Canonical client-facing error messages. Handlers never invent their own
// wording for these cases.
const (
	msgInvalidBody       = "The request body is invalid"
	msgUnauthorized      = "Unauthorized"
	msgNoPermission      = "You don't have permission on this resource"
	msgNotFound          = "Not found"
	msgInvalidEnrollment = "Enrollment data is invalid"
	msgInternal          = "Internal server error"
)

// BaseHandler carries the cross-cutting pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the start of handling with request-scoped context.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// LogError logs a handler failure with request-scoped context.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c.Request.Context(), h.logger).Error(msg, args...)
}

// parseIDParam reads a positive integer path parameter. The empty return
// signals that a 404 has already been written: unparseable ids address no
// resource at all.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: msgNotFound})
		return 0, false
	}
	return uint(id), true
}

// handleServiceError is the single place service errors become HTTP
// responses. Handlers call it for any error a service returns.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: msgInvalidBody,
			Details: validationErrs,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: msgUnauthorized})
	case errors.Is(err, services.ErrNoPermission):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: msgNoPermission})
	case errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAvatarNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: msgNotFound})
	case errors.Is(err, services.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
	case errors.Is(err, services.ErrInvalidEnrollment):
		c.JSON(http.StatusConflict, ErrorResponse{Message: msgInvalidEnrollment})
	default:
		h.LogError(c, err, "unhandled service error", "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msgInternal})
	}
}

// requestBaseURL rebuilds the externally visible base URL for self links.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
