package validator

import "testing"

func TestValidator_CourseCreateRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     CourseCreateRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: CourseCreateRequest{
				Subject:      "CS",
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "Su25",
				InstructorID: 2,
			},
		},
		{
			name: "missing subject",
			req: CourseCreateRequest{
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "Su25",
				InstructorID: 2,
			},
			wantErr: true,
		},
		{
			name: "missing instructor",
			req: CourseCreateRequest{
				Subject: "CS",
				Number:  "493",
				Title:   "Cloud Application Development",
				Term:    "Su25",
			},
			wantErr: true,
		},
		{
			name: "junk term",
			req: CourseCreateRequest{
				Subject:      "CS",
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "Su25\n;drop",
				InstructorID: 2,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_CourseUpdateRequestEmptyBodyIsValid(t *testing.T) {
	v := New()
	if err := v.Validate(&CourseUpdateRequest{}); err != nil {
		t.Errorf("empty update should validate, got %v", err)
	}
}

func TestValidator_EnrollmentUpdateRequest(t *testing.T) {
	v := New()

	add := []uint{1, 2}
	remove := []uint{}

	if err := v.Validate(&EnrollmentUpdateRequest{Add: &add, Remove: &remove}); err != nil {
		t.Errorf("both lists present should validate, got %v", err)
	}
	if err := v.Validate(&EnrollmentUpdateRequest{Add: &add}); err == nil {
		t.Error("missing remove list should fail validation")
	}
}
