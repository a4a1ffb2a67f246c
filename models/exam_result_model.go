package models

import (
	"time"

	"github.com/google/uuid"
)

type ExamResult struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	ExamName   string  `gorm:"size:255;not null" json:"exam_name"`
	Subject    string  `gorm:"size:100;not null" json:"subject"`
	Term       string  `gorm:"size:30;not null" json:"term"`
	Year       int     `gorm:"not null" json:"year"`
	MarksTotal float64 `gorm:"type:numeric(6,2);not null" json:"marks_total"`
	Marks      float64 `gorm:"type:numeric(6,2);not null" json:"marks"`
	Grade      string  `gorm:"size:5" json:"grade"`

	RecordedByID uuid.UUID `gorm:"type:uuid;not null" json:"recorded_by_id"`

	Student *Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Percent is the score as a percentage of the total marks.
func (r *ExamResult) Percent() float64 {
	if r.MarksTotal <= 0 {
		return 0
	}
	return r.Marks / r.MarksTotal * 100
}
