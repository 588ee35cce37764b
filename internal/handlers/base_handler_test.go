package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

func testBaseHandler() BaseHandler {
	return NewBaseHandler(utils.NewSlogLogger(slog.New(slog.DiscardHandler)))
}

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unauthorized",
			err:        services.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgUnauthorized,
		},
		{
			name:       "permission denied",
			err:        services.ErrNoPermission,
			wantStatus: http.StatusForbidden,
			wantMsg:    msgNoPermission,
		},
		{
			name:       "wrapped permission error",
			err:        services.NewPermissionError(7, "enrollment", "update", "not instructor"),
			wantStatus: http.StatusForbidden,
			wantMsg:    msgNoPermission,
		},
		{
			name:       "course not found",
			err:        services.ErrCourseNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    msgNotFound,
		},
		{
			name:       "user not found",
			err:        services.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    msgNotFound,
		},
		{
			name:       "avatar not found",
			err:        services.ErrAvatarNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    msgNotFound,
		},
		{
			name:       "invalid request",
			err:        services.ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgInvalidBody,
		},
		{
			name:       "invalid enrollment",
			err:        services.ErrInvalidEnrollment,
			wantStatus: http.StatusConflict,
			wantMsg:    msgInvalidEnrollment,
		},
		{
			name:       "validation errors",
			err:        validator.ValidationErrors{{Field: "subject", Message: "is required"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgInvalidBody,
		},
		{
			name:       "unknown error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    msgInternal,
		},
	}

	h := testBaseHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.handleServiceError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := w.Body.String(); !strings.Contains(body, tt.wantMsg) {
				t.Errorf("body %q does not contain %q", body, tt.wantMsg)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testBaseHandler()

	tests := []struct {
		raw    string
		wantOK bool
	}{
		{"12", true},
		{"0", false},
		{"-3", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("id="+tt.raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			_, ok := h.parseIDParam(c, "id")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK && w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
			}
		})
	}
}
