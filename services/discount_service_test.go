package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func createStudent(t *testing.T, db *gorm.DB, tenantID uuid.UUID, admission time.Time, mutate func(*models.Student)) *models.Student {
	t.Helper()
	student := &models.Student{
		TenantID:         tenantID,
		FirstName:        "Test",
		LastName:         "Student",
		RollNumber:       uuid.New().String()[:8],
		ClassName:        "P1",
		Section:          "A",
		AdmissionDate:    admission,
		DiscountCategory: models.DiscountCategoryNone,
		IsActive:         true,
	}
	if mutate != nil {
		mutate(student)
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func TestComputeDiscountsStaffChild(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()
	staffID := uuid.New()

	policy := models.DiscountPolicy{
		TenantID:   tenantID,
		Name:       "Staff Child",
		Type:       models.DiscountTypeStaffChild,
		Percentage: 20,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&policy).Error)

	student := createStudent(t, db, tenantID, date(2024, time.January, 10), func(s *models.Student) {
		s.IsStaffChild = true
		s.StaffParentID = &staffID
	})

	result := ComputeDiscounts(db, student, nil)

	assert.True(t, result.Success)
	require.Len(t, result.AppliedDiscounts, 1)
	assert.Equal(t, policy.ID, result.AppliedDiscounts[0].PolicyID)
	assert.Equal(t, 20.0, result.TotalDiscountPercentage)
	assert.Equal(t, 8000.0, result.ApplyTo(10000))
}

func TestComputeDiscountsStaffChildNeedsLinkedParent(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Staff Child", Type: models.DiscountTypeStaffChild,
		Percentage: 20, IsActive: true,
	}).Error)

	// Flagged but with no staff parent reference.
	student := createStudent(t, db, tenantID, date(2024, time.January, 10), func(s *models.Student) {
		s.IsStaffChild = true
	})

	result := ComputeDiscounts(db, student, nil)
	assert.True(t, result.Success)
	assert.Empty(t, result.AppliedDiscounts)
}

func TestComputeDiscountsPercentageClamped(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()
	staffID := uuid.New()

	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Staff Child", Type: models.DiscountTypeStaffChild,
		Percentage: 60, IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Merit", Type: models.DiscountTypeMerit,
		Percentage: 70, IsActive: true,
	}).Error)

	student := createStudent(t, db, tenantID, date(2024, time.January, 10), func(s *models.Student) {
		s.IsStaffChild = true
		s.StaffParentID = &staffID
		s.DiscountCategory = models.DiscountCategoryMerit
	})

	result := ComputeDiscounts(db, student, nil)

	assert.True(t, result.Success)
	assert.Len(t, result.AppliedDiscounts, 2)
	assert.Equal(t, 100.0, result.TotalDiscountPercentage)
	assert.Equal(t, 0.0, result.ApplyTo(10000))
}

func TestComputeDiscountsSiblingPosition(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	family := models.Family{TenantID: tenantID, GuardianName: "Ssempa"}
	require.NoError(t, db.Create(&family).Error)

	// Position-2 policy at 10%; admissions Jan, Mar, Jun of the same year.
	pos := 2
	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Second Child", Type: models.DiscountTypeSibling,
		Percentage: 10, SiblingPosition: &pos, IsActive: true,
	}).Error)

	link := func(s *models.Student) { s.FamilyID = &family.ID }
	first := createStudent(t, db, tenantID, date(2024, time.January, 5), link)
	second := createStudent(t, db, tenantID, date(2024, time.March, 5), link)
	third := createStudent(t, db, tenantID, date(2024, time.June, 5), link)

	assert.Empty(t, ComputeDiscounts(db, first, nil).AppliedDiscounts)
	assert.Empty(t, ComputeDiscounts(db, third, nil).AppliedDiscounts)

	result := ComputeDiscounts(db, second, nil)
	require.Len(t, result.AppliedDiscounts, 1)
	assert.Equal(t, 10.0, result.TotalDiscountPercentage)
}

func TestComputeDiscountsSiblingFallback(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	family := models.Family{TenantID: tenantID, GuardianName: "Nankya"}
	require.NoError(t, db.Create(&family).Error)

	// Position-agnostic sibling policy applies to any ordinal.
	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Sibling", Type: models.DiscountTypeSibling,
		Percentage: 5, IsActive: true,
	}).Error)

	link := func(s *models.Student) { s.FamilyID = &family.ID }
	first := createStudent(t, db, tenantID, date(2024, time.January, 5), link)
	second := createStudent(t, db, tenantID, date(2024, time.March, 5), link)

	for _, s := range []*models.Student{first, second} {
		result := ComputeDiscounts(db, s, nil)
		require.Len(t, result.AppliedDiscounts, 1)
		assert.Equal(t, 5.0, result.TotalDiscountPercentage)
	}
}

func TestComputeDiscountsSoleMemberGetsNoSiblingDiscount(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	family := models.Family{TenantID: tenantID, GuardianName: "Okello"}
	require.NoError(t, db.Create(&family).Error)
	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Sibling", Type: models.DiscountTypeSibling,
		Percentage: 5, IsActive: true,
	}).Error)

	only := createStudent(t, db, tenantID, date(2024, time.January, 5), func(s *models.Student) {
		s.FamilyID = &family.ID
	})

	assert.Empty(t, ComputeDiscounts(db, only, nil).AppliedDiscounts)
}

func TestComputeDiscountsFinancialAid(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	require.NoError(t, db.Create(&models.DiscountPolicy{
		TenantID: tenantID, Name: "Bursary", Type: models.DiscountTypeFinancialAid,
		FixedAmount: 1500, IsActive: true,
	}).Error)

	student := createStudent(t, db, tenantID, date(2024, time.January, 10), func(s *models.Student) {
		s.DiscountCategory = models.DiscountCategoryFinancialAid
	})

	result := ComputeDiscounts(db, student, nil)
	require.Len(t, result.AppliedDiscounts, 1)
	assert.Equal(t, 1500.0, result.TotalDiscountAmount)
	assert.Equal(t, 8500.0, result.ApplyTo(10000))
}

func TestApplyToPercentageBeforeFixed(t *testing.T) {
	result := DiscountResult{
		Success:                 true,
		TotalDiscountPercentage: 50,
		TotalDiscountAmount:     1000,
	}
	// 10000 -> 5000 after percentage -> 4000 after fixed.
	assert.Equal(t, 4000.0, result.ApplyTo(10000))

	// Net never goes below zero.
	result.TotalDiscountPercentage = 100
	assert.Equal(t, 0.0, result.ApplyTo(10000))
}

func TestComputeDiscountsDegradesOnLookupError(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()
	student := createStudent(t, db, tenantID, date(2024, time.January, 10), nil)

	// Force the policy lookup to fail.
	require.NoError(t, db.Migrator().DropTable(&models.DiscountPolicy{}))

	result := ComputeDiscounts(db, student, nil)
	assert.False(t, result.Success)
	assert.Empty(t, result.AppliedDiscounts)
	assert.Equal(t, student.ID, result.StudentID)
	// A degraded result applies no discount at all.
	assert.Equal(t, 10000.0, result.ApplyTo(10000))
}

func TestComputeDiscountsInactivePolicyIgnored(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()
	staffID := uuid.New()

	inactive := models.DiscountPolicy{
		TenantID: tenantID, Name: "Staff Child", Type: models.DiscountTypeStaffChild,
		Percentage: 20, IsActive: false,
	}
	require.NoError(t, db.Create(&inactive).Error)
	// GORM substitutes the column default (true) for zero-value fields
	// on insert, so deactivation needs an explicit update.
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	student := createStudent(t, db, tenantID, date(2024, time.January, 10), func(s *models.Student) {
		s.IsStaffChild = true
		s.StaffParentID = &staffID
	})

	assert.Empty(t, ComputeDiscounts(db, student, nil).AppliedDiscounts)
}
