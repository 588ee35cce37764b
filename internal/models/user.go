package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

// IsValid reports whether the role is one of the three known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// User is a local account record mirroring a principal at the external
// identity provider. Rows are created only by the out-of-band seeding
// command, never at request time, and are never deleted by the API.
type User struct {
	ID   uint     `json:"id" gorm:"primaryKey"`
	Sub  string   `json:"sub" gorm:"uniqueIndex;not null;size:255"`
	Role UserRole `json:"role" gorm:"not null;size:20"`

	// Courses is the denormalized back-reference list of course ids this
	// user teaches (instructor) or is enrolled in (student). Kept in sync
	// by course create/update/delete and by enrollment updates.
	Courses datatypes.JSONSlice[uint] `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
