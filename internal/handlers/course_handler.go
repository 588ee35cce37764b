package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService     services.CourseService
	enrollmentService services.EnrollmentService
	rosterService     services.RosterService
}

func NewCourseHandler(
	courseService services.CourseService,
	enrollmentService services.EnrollmentService,
	rosterService services.RosterService,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:       NewBaseHandler(logger),
		courseService:     courseService,
		enrollmentService: enrollmentService,
		rosterService:     rosterService,
	}
}

// courseResponse renders a course without its students list, plus a self
// link.
func courseResponse(c *gin.Context, course *models.Course) gin.H {
	return gin.H{
		"id":            course.ID,
		"subject":       course.Subject,
		"number":        course.Number,
		"title":         course.Title,
		"term":          course.Term,
		"instructor_id": course.InstructorID,
		"self":          fmt.Sprintf("%s/courses/%d", requestBaseURL(c), course.ID),
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, courseResponse(c, course))
}

// ListCourses returns one subject-ordered page plus a link to the next page
// when more courses remain.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.courseService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	courses := make([]gin.H, 0, len(result.Courses))
	for _, course := range result.Courses {
		courses = append(courses, courseResponse(c, course))
	}

	response := gin.H{"courses": courses}
	if int64(result.Offset+result.Limit) < result.Total {
		response["next"] = fmt.Sprintf("%s/courses?limit=%d&offset=%d",
			requestBaseURL(c), result.Limit, result.Offset+result.Limit)
	}
	c.JSON(http.StatusOK, response)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseResponse(c, course))
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseResponse(c, course))
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) GetEnrollment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	students, err := h.enrollmentService.Get(c.Request.Context(), id, GetUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if students == nil {
		students = []uint{}
	}
	c.JSON(http.StatusOK, students)
}

func (h *CourseHandler) UpdateEnrollment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	requester := GetUserFromContext(c)

	var req services.EnrollmentUpdateRequest
	bindErr := c.ShouldBindJSON(&req)
	// Both keys must be present, even when empty.
	if bindErr == nil && (req.Add == nil || req.Remove == nil) {
		bindErr = fmt.Errorf("add and remove are required")
	}
	if bindErr != nil {
		// Authorization is checked before the body shape: a caller who
		// may not touch this course sees a denial, not a body error.
		if _, err := h.enrollmentService.Get(c.Request.Context(), id, requester); err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidBody})
		return
	}

	err := h.enrollmentService.Update(c.Request.Context(), id, *req.Add, *req.Remove, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Enrollment updated"})
}

// ExportRoster streams the course roster as a spreadsheet download.
func (h *CourseHandler) ExportRoster(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	f, err := h.rosterService.Export(c.Request.Context(), id, GetUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="roster-%d.xlsx"`, id))
	if _, err := f.WriteTo(c.Writer); err != nil {
		h.LogError(c, err, "failed to stream roster", "course_id", id)
	}
}
