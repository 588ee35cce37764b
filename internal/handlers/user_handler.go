package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	authService services.AuthService
	userService services.UserService
}

func NewUserHandler(authService services.AuthService, userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		userService: userService,
	}
}

// Login exchanges a username and password for a JWT issued by the identity
// provider.
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListUsers returns the summary of every user. Route-level role gating
// restricts this to admins.
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "listing users")

	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	summaries := make([]gin.H, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, gin.H{
			"id":   user.ID,
			"sub":  user.Sub,
			"role": user.Role,
		})
	}
	c.JSON(http.StatusOK, summaries)
}

// GetUser returns one user's detail, enriched with an avatar link when an
// avatar exists and course links for instructors and students.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.userService.Get(c.Request.Context(), id, GetUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	base := requestBaseURL(c)
	response := gin.H{
		"id":   detail.User.ID,
		"sub":  detail.User.Sub,
		"role": detail.User.Role,
	}
	if detail.HasAvatar {
		response["avatar_url"] = fmt.Sprintf("%s/users/%d/avatar", base, detail.User.ID)
	}
	if detail.User.Role == models.RoleInstructor || detail.User.Role == models.RoleStudent {
		courses := make([]string, 0, len(detail.User.Courses))
		for _, courseID := range detail.User.Courses {
			courses = append(courses, fmt.Sprintf("%s/courses/%d", base, courseID))
		}
		response["courses"] = courses
	}

	c.JSON(http.StatusOK, response)
}
