package models

import (
	"time"

	"github.com/google/uuid"
)

// Family groups students under shared guardianship. TotalChildren is the
// number of distinct active students linked to the family, recomputed on
// every linking operation.
type Family struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	GuardianName   string  `gorm:"size:255;not null" json:"guardian_name"`
	GuardianMobile *string `gorm:"size:30" json:"guardian_mobile"`
	MotherName     *string `gorm:"size:255" json:"mother_name"`
	MotherMobile   *string `gorm:"size:30" json:"mother_mobile"`
	Address        *string `gorm:"type:text" json:"address"`

	TotalChildren int `gorm:"default:0" json:"total_children"`

	Students []Student `gorm:"foreignkey:FamilyID" json:"students,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
