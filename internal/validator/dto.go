package validator

// LoginRequest is the body of POST /users/login, forwarded to the identity
// provider's resource-owner-password grant.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CourseCreateRequest requires every creatable field.
type CourseCreateRequest struct {
	Subject      string `json:"subject" validate:"required,max=50"`
	Number       string `json:"number" validate:"required,max=20"`
	Title        string `json:"title" validate:"required,max=200"`
	Term         string `json:"term" validate:"required,course_term"`
	InstructorID uint   `json:"instructor_id" validate:"required"`
}

// CourseUpdateRequest accepts any subset of the creatable fields. An empty
// update is valid and leaves the record unchanged.
type CourseUpdateRequest struct {
	Subject      *string `json:"subject" validate:"omitempty,max=50"`
	Number       *string `json:"number" validate:"omitempty,max=20"`
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Term         *string `json:"term" validate:"omitempty,course_term"`
	InstructorID *uint   `json:"instructor_id"`
}

// EnrollmentUpdateRequest carries the student ids to add and remove. Both
// fields must be present in the body; set-level rules (disjointness,
// non-empty union, student role) are enforced by the enrollment service.
type EnrollmentUpdateRequest struct {
	Add    *[]uint `json:"add" validate:"required"`
	Remove *[]uint `json:"remove" validate:"required"`
}
