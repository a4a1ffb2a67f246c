package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

type AttendanceRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	Date   time.Time `gorm:"not null;type:date;index" json:"date"`
	Status string    `gorm:"size:20;not null" json:"status"`
	Remark *string   `gorm:"size:255" json:"remark"`

	MarkedByID uuid.UUID `gorm:"type:uuid;not null" json:"marked_by_id"`

	Student  *Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	MarkedBy *User    `gorm:"foreignkey:MarkedByID" json:"marked_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
