package models

import (
	"time"

	"github.com/google/uuid"
)

// Discount policy types.
const (
	DiscountTypeStaffChild   = "staff_child"
	DiscountTypeSibling      = "sibling"
	DiscountTypeMerit        = "merit"
	DiscountTypeFinancialAid = "financial_aid"
	DiscountTypeEarlyPayment = "early_payment"
	DiscountTypeCustom       = "custom"
)

// DiscountPolicy defines one discount a tenant grants. A policy may carry a
// percentage, a fixed amount, or both. SiblingPosition is only meaningful
// for sibling policies: nil means the policy applies at any ordinal.
type DiscountPolicy struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Type        string  `gorm:"size:30;not null" json:"type"`
	Percentage  float64 `gorm:"type:numeric(5,2);default:0" json:"percentage"`
	FixedAmount float64 `gorm:"type:numeric(10,2);default:0" json:"fixed_amount"`

	SiblingPosition *int     `json:"sibling_position"`
	MinMeritPercent *float64 `gorm:"type:numeric(5,2)" json:"min_merit_percent"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
