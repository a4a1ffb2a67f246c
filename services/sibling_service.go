package services

import (
	"errors"
	"fmt"

	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTooFewSiblings rejects linking requests with fewer than two students.
var ErrTooFewSiblings = errors.New("at least 2 students are required to link siblings")

// FamilyGroup is a set of students detected as belonging together, either
// through a confirmed Family link or a shared guardian mobile number.
type FamilyGroup struct {
	FamilyID       *uuid.UUID       `json:"family_id,omitempty"`
	GuardianMobile string           `json:"guardian_mobile,omitempty"`
	Students       []models.Student `json:"students"`
}

// SiblingDetection is the output of a detection sweep. Confirmed groups
// already share a Family; mobile-matched groups are suggestions that need
// human confirmation before linking.
type SiblingDetection struct {
	ConfirmedFamilies []FamilyGroup `json:"confirmed_families"`
	SuggestedByMobile []FamilyGroup `json:"suggested_by_mobile"`
	TotalConfirmed    int           `json:"total_confirmed"`
	TotalSuggested    int           `json:"total_suggested"`
}

// FamilyMeta carries optional guardian details for LinkSiblings. Empty
// fields leave an existing family's metadata untouched.
type FamilyMeta struct {
	GuardianName   string
	GuardianMobile string
	MotherName     string
	MotherMobile   string
	Address        string
}

// DetectSiblings finds sibling groups for a tenant: first by existing
// family links, then by matching normalized guardian mobile numbers among
// students that are not linked yet.
func DetectSiblings(db *gorm.DB, tenantID uuid.UUID) (SiblingDetection, error) {
	detection := SiblingDetection{
		ConfirmedFamilies: []FamilyGroup{},
		SuggestedByMobile: []FamilyGroup{},
	}

	var students []models.Student
	err := db.Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("admission_date asc").
		Find(&students).Error
	if err != nil {
		return detection, err
	}

	byFamily := map[uuid.UUID][]models.Student{}
	for _, s := range students {
		if s.FamilyID != nil {
			byFamily[*s.FamilyID] = append(byFamily[*s.FamilyID], s)
		}
	}
	for familyID, group := range byFamily {
		if len(group) < 2 {
			continue
		}
		id := familyID
		SortFamilyMembers(group)
		detection.ConfirmedFamilies = append(detection.ConfirmedFamilies, FamilyGroup{
			FamilyID: &id,
			Students: group,
		})
	}

	// Contact-based suggestions only consider unlinked students. A student
	// whose father and mother numbers normalize to the same value joins
	// that number's group once.
	byMobile := map[string][]models.Student{}
	for _, s := range students {
		if s.FamilyID != nil {
			continue
		}
		seen := map[string]bool{}
		for _, raw := range []*string{s.FatherMobile, s.MotherMobile} {
			if raw == nil {
				continue
			}
			mobile := utils.NormalizeMobile(*raw)
			if mobile == "" || seen[mobile] {
				continue
			}
			seen[mobile] = true
			byMobile[mobile] = append(byMobile[mobile], s)
		}
	}
	for mobile, group := range byMobile {
		if len(group) < 2 {
			continue
		}
		SortFamilyMembers(group)
		detection.SuggestedByMobile = append(detection.SuggestedByMobile, FamilyGroup{
			GuardianMobile: mobile,
			Students:       group,
		})
	}

	detection.TotalConfirmed = len(detection.ConfirmedFamilies)
	detection.TotalSuggested = len(detection.SuggestedByMobile)
	return detection, nil
}

// LinkSiblings links the given students into one family. An existing family
// referenced by any of them is reused (metadata refreshed, membership
// unioned); otherwise a new family is seeded from the first student's
// guardian data. Every member's ordinal position is then recomputed by
// admission date, so relinking an unchanged set is a no-op. The whole
// operation runs in one transaction: an unknown student id rolls everything
// back.
func LinkSiblings(db *gorm.DB, tenantID uuid.UUID, studentIDs []uuid.UUID, meta FamilyMeta) (*models.Family, error) {
	if len(studentIDs) < 2 {
		return nil, ErrTooFewSiblings
	}

	var family models.Family
	err := db.Transaction(func(tx *gorm.DB) error {
		var students []models.Student
		if err := tx.Where("tenant_id = ? AND id IN ?", tenantID, studentIDs).Find(&students).Error; err != nil {
			return err
		}
		if len(students) != len(studentIDs) {
			found := map[uuid.UUID]bool{}
			for _, s := range students {
				found[s.ID] = true
			}
			for _, id := range studentIDs {
				if !found[id] {
					return fmt.Errorf("student %s not found for this school", id)
				}
			}
		}

		// Keep the caller's ordering when picking the seed/reused family.
		byID := map[uuid.UUID]*models.Student{}
		for i := range students {
			byID[students[i].ID] = &students[i]
		}
		ordered := make([]*models.Student, 0, len(studentIDs))
		for _, id := range studentIDs {
			ordered = append(ordered, byID[id])
		}

		var existingID *uuid.UUID
		for _, s := range ordered {
			if s.FamilyID != nil {
				existingID = s.FamilyID
				break
			}
		}

		if existingID != nil {
			if err := tx.First(&family, "id = ? AND tenant_id = ?", *existingID, tenantID).Error; err != nil {
				return err
			}
			applyFamilyMeta(&family, meta)
		} else {
			family = newFamilyFromStudent(tenantID, ordered[0], meta)
			if err := tx.Create(&family).Error; err != nil {
				return err
			}
		}

		for _, s := range ordered {
			if err := tx.Model(&models.Student{}).Where("id = ?", s.ID).
				Update("family_id", family.ID).Error; err != nil {
				return err
			}
		}

		// Union by student identity: everyone now pointing at the family,
		// including members that were linked before this call.
		var members []models.Student
		if err := tx.Where("tenant_id = ? AND family_id = ? AND is_active = ?",
			tenantID, family.ID, true).Find(&members).Error; err != nil {
			return err
		}

		SortFamilyMembers(members)
		for i, m := range members {
			if m.SiblingPosition == i+1 {
				continue
			}
			if err := tx.Model(&models.Student{}).Where("id = ?", m.ID).
				Update("sibling_position", i+1).Error; err != nil {
				return err
			}
		}

		family.TotalChildren = len(members)
		return tx.Save(&family).Error
	})
	if err != nil {
		return nil, err
	}
	return &family, nil
}

// RecomputeSiblingPositions reassigns ordinals for one family. Used by the
// weekly audit job and after a member is deactivated.
func RecomputeSiblingPositions(db *gorm.DB, familyID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var family models.Family
		if err := tx.First(&family, "id = ?", familyID).Error; err != nil {
			return err
		}

		var members []models.Student
		if err := tx.Where("family_id = ? AND is_active = ?", familyID, true).
			Find(&members).Error; err != nil {
			return err
		}

		SortFamilyMembers(members)
		for i, m := range members {
			if m.SiblingPosition == i+1 {
				continue
			}
			if err := tx.Model(&models.Student{}).Where("id = ?", m.ID).
				Update("sibling_position", i+1).Error; err != nil {
				return err
			}
		}

		if family.TotalChildren != len(members) {
			family.TotalChildren = len(members)
			return tx.Save(&family).Error
		}
		return nil
	})
}

func applyFamilyMeta(family *models.Family, meta FamilyMeta) {
	if meta.GuardianName != "" {
		family.GuardianName = meta.GuardianName
	}
	if meta.GuardianMobile != "" {
		family.GuardianMobile = &meta.GuardianMobile
	}
	if meta.MotherName != "" {
		family.MotherName = &meta.MotherName
	}
	if meta.MotherMobile != "" {
		family.MotherMobile = &meta.MotherMobile
	}
	if meta.Address != "" {
		family.Address = &meta.Address
	}
}

func newFamilyFromStudent(tenantID uuid.UUID, seed *models.Student, meta FamilyMeta) models.Family {
	family := models.Family{
		TenantID:       tenantID,
		GuardianMobile: seed.FatherMobile,
		MotherName:     seed.MotherName,
		MotherMobile:   seed.MotherMobile,
	}
	if seed.FatherName != nil {
		family.GuardianName = *seed.FatherName
	} else {
		family.GuardianName = seed.FullName() + " family"
	}
	applyFamilyMeta(&family, meta)
	return family
}
