package services

import (
	"log"
	"sort"

	"github.com/kasozi256/schooldesk/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppliedDiscount is one policy the calculator matched for a student.
type AppliedDiscount struct {
	PolicyID    uuid.UUID `json:"policy_id"`
	PolicyName  string    `json:"policy_name"`
	PolicyType  string    `json:"policy_type"`
	Percentage  float64   `json:"percentage"`
	FixedAmount float64   `json:"fixed_amount"`
}

// DiscountResult aggregates every discount applicable to a student.
// Success=false means a lookup failed and the result carries no discounts;
// fee computation proceeds at the gross amount instead of blocking.
type DiscountResult struct {
	Success                 bool              `json:"success"`
	StudentID               uuid.UUID         `json:"student_id"`
	AppliedDiscounts        []AppliedDiscount `json:"applied_discounts"`
	TotalDiscountPercentage float64           `json:"total_discount_percentage"`
	TotalDiscountAmount     float64           `json:"total_discount_amount"`
}

// ApplyTo computes the net payable for a gross amount. Percentage discounts
// apply first, then fixed amounts; the net never goes below zero. The order
// is fixed so repeated billing runs reproduce the same figures.
func (r DiscountResult) ApplyTo(gross float64) float64 {
	net := gross * (1 - r.TotalDiscountPercentage/100)
	net -= r.TotalDiscountAmount
	if net < 0 {
		return 0
	}
	return net
}

// ComputeDiscounts derives the discounts applicable to a student. Pass
// policies when the caller already fetched the tenant's active policies
// (bulk billing); pass nil to have them loaded here.
func ComputeDiscounts(db *gorm.DB, student *models.Student, policies []models.DiscountPolicy) DiscountResult {
	degraded := DiscountResult{Success: false, StudentID: student.ID, AppliedDiscounts: []AppliedDiscount{}}

	if policies == nil {
		err := db.Where("tenant_id = ? AND is_active = ?", student.TenantID, true).
			Find(&policies).Error
		if err != nil {
			log.Printf("Discount policy lookup failed for student %s: %v", student.ID, err)
			return degraded
		}
	}

	result := DiscountResult{Success: true, StudentID: student.ID, AppliedDiscounts: []AppliedDiscount{}}

	// Staff-child discount applies unconditionally once the student is
	// flagged and linked to a staff parent.
	if student.IsStaffChild && student.StaffParentID != nil {
		if p := findPolicy(policies, models.DiscountTypeStaffChild); p != nil {
			result.apply(p)
		}
	}

	if student.FamilyID != nil {
		if err := applySiblingPolicy(db, student, policies, &result); err != nil {
			log.Printf("Sibling lookup failed for student %s: %v", student.ID, err)
			return degraded
		}
	}

	switch student.DiscountCategory {
	case models.DiscountCategoryMerit:
		if p := findPolicy(policies, models.DiscountTypeMerit); p != nil {
			result.apply(p)
		}
	case models.DiscountCategoryFinancialAid:
		if p := findPolicy(policies, models.DiscountTypeFinancialAid); p != nil {
			result.apply(p)
		}
	}

	if result.TotalDiscountPercentage > 100 {
		result.TotalDiscountPercentage = 100
	}
	return result
}

func (r *DiscountResult) apply(p *models.DiscountPolicy) {
	r.AppliedDiscounts = append(r.AppliedDiscounts, AppliedDiscount{
		PolicyID:    p.ID,
		PolicyName:  p.Name,
		PolicyType:  p.Type,
		Percentage:  p.Percentage,
		FixedAmount: p.FixedAmount,
	})
	r.TotalDiscountPercentage += p.Percentage
	r.TotalDiscountAmount += p.FixedAmount
}

// applySiblingPolicy matches a sibling policy against the student's ordinal
// position among active family members. An exact-position policy wins over
// a position-agnostic one.
func applySiblingPolicy(db *gorm.DB, student *models.Student, policies []models.DiscountPolicy, result *DiscountResult) error {
	var members []models.Student
	err := db.Where("tenant_id = ? AND family_id = ? AND is_active = ?",
		student.TenantID, *student.FamilyID, true).
		Find(&members).Error
	if err != nil {
		return err
	}
	if len(members) < 2 {
		return nil
	}

	position := SiblingOrdinal(members, student.ID)
	if position == 0 {
		return nil
	}

	var fallback *models.DiscountPolicy
	for i := range policies {
		p := &policies[i]
		if p.Type != models.DiscountTypeSibling || !p.IsActive {
			continue
		}
		if p.SiblingPosition == nil {
			if fallback == nil {
				fallback = p
			}
			continue
		}
		if *p.SiblingPosition == position {
			result.apply(p)
			return nil
		}
	}
	if fallback != nil {
		result.apply(fallback)
	}
	return nil
}

func findPolicy(policies []models.DiscountPolicy, discountType string) *models.DiscountPolicy {
	for i := range policies {
		if policies[i].Type == discountType && policies[i].IsActive {
			return &policies[i]
		}
	}
	return nil
}

// SortFamilyMembers orders family members by admission date ascending,
// tie-broken by record creation time then id, so ordinal assignment is
// stable across invocations.
func SortFamilyMembers(members []models.Student) {
	sort.SliceStable(members, func(i, j int) bool {
		if !members[i].AdmissionDate.Equal(members[j].AdmissionDate) {
			return members[i].AdmissionDate.Before(members[j].AdmissionDate)
		}
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].ID.String() < members[j].ID.String()
	})
}

// SiblingOrdinal returns the 1-based position of the given student among
// the members, or 0 when the student is not in the set.
func SiblingOrdinal(members []models.Student, studentID uuid.UUID) int {
	SortFamilyMembers(members)
	for i, m := range members {
		if m.ID == studentID {
			return i + 1
		}
	}
	return 0
}
