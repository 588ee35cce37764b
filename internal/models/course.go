package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course is a single course offering for one term. The students column is
// stored as a JSON array but treated as a set everywhere: enrollment updates
// are idempotent and never produce duplicates.
type Course struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Subject      string `json:"subject" gorm:"not null;size:50;index"`
	Number       string `json:"number" gorm:"not null;size:20"`
	Title        string `json:"title" gorm:"not null;size:200"`
	Term         string `json:"term" gorm:"not null;size:20"`
	InstructorID uint   `json:"instructor_id" gorm:"not null"`

	// Students holds ids of users with role student. Never serialized on
	// course list/get responses.
	Students datatypes.JSONSlice[uint] `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// HasStudent reports whether the given user id is enrolled.
func (c *Course) HasStudent(id uint) bool {
	for _, s := range c.Students {
		if s == id {
			return true
		}
	}
	return false
}
