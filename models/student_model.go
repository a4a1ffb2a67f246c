package models

import (
	"time"

	"github.com/google/uuid"
)

// Discount categories a student can be placed in by the admissions office.
const (
	DiscountCategoryNone         = "none"
	DiscountCategoryMerit        = "merit"
	DiscountCategoryFinancialAid = "financial_aid"
)

type Student struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	FirstName  string `gorm:"size:100;not null" json:"first_name"`
	LastName   string `gorm:"size:100;not null" json:"last_name"`
	RollNumber string `gorm:"size:30;not null" json:"roll_number"`
	ClassName  string `gorm:"size:50;not null" json:"class_name"`
	Section    string `gorm:"size:20" json:"section"`
	Subjects   string `gorm:"type:text" json:"subjects"`

	FatherName   *string `gorm:"size:255" json:"father_name"`
	FatherMobile *string `gorm:"size:30" json:"father_mobile"`
	MotherName   *string `gorm:"size:255" json:"mother_name"`
	MotherMobile *string `gorm:"size:30" json:"mother_mobile"`

	AdmissionDate time.Time `gorm:"not null;type:date" json:"admission_date"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	PhotoURL      *string   `gorm:"size:255" json:"photo_url"`

	// Fee-relevant flags.
	IsStaffChild     bool       `gorm:"default:false" json:"is_staff_child"`
	StaffParentID    *uuid.UUID `gorm:"type:uuid" json:"staff_parent_id"`
	DiscountCategory string     `gorm:"size:30;not null;default:'none'" json:"discount_category"`

	// Family linkage; SiblingPosition is a 1-based ordinal by admission
	// date among active family members, 0 while unlinked.
	FamilyID        *uuid.UUID `gorm:"type:uuid;index" json:"family_id"`
	SiblingPosition int        `gorm:"default:0" json:"sibling_position"`

	Family      *Family `gorm:"foreignkey:FamilyID" json:"family,omitempty"`
	StaffParent *User   `gorm:"foreignkey:StaffParentID" json:"staff_parent,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
