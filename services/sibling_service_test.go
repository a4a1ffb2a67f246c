package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDetectSiblingsByMobile(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	// Three unlinked students sharing a father number written in different
	// formats, plus one with an unrelated number.
	createStudent(t, db, tenantID, date(2023, time.February, 1), func(s *models.Student) {
		s.FatherMobile = strPtr("0772 123456")
	})
	createStudent(t, db, tenantID, date(2024, time.February, 1), func(s *models.Student) {
		s.FatherMobile = strPtr("+256772123456")
	})
	createStudent(t, db, tenantID, date(2025, time.February, 1), func(s *models.Student) {
		s.MotherMobile = strPtr("256-772-123-456")
	})
	createStudent(t, db, tenantID, date(2025, time.March, 1), func(s *models.Student) {
		s.FatherMobile = strPtr("0700999888")
	})

	detection, err := DetectSiblings(db, tenantID)
	require.NoError(t, err)

	assert.Equal(t, 0, detection.TotalConfirmed)
	require.Equal(t, 1, detection.TotalSuggested)
	group := detection.SuggestedByMobile[0]
	assert.Equal(t, "772123456", group.GuardianMobile)
	assert.Len(t, group.Students, 3)
}

func TestDetectSiblingsSameFatherAndMotherNumberCountsOnce(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	// Both guardian numbers normalize to the same value; the student must
	// not pair with itself.
	createStudent(t, db, tenantID, date(2024, time.February, 1), func(s *models.Student) {
		s.FatherMobile = strPtr("0772123456")
		s.MotherMobile = strPtr("+256772123456")
	})

	detection, err := DetectSiblings(db, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 0, detection.TotalSuggested)
}

func TestDetectSiblingsConfirmedAndLinkedExcludedFromSuggestions(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	family := models.Family{TenantID: tenantID, GuardianName: "Mukasa"}
	require.NoError(t, db.Create(&family).Error)

	// Two linked students who also share a mobile with an unlinked one.
	link := func(s *models.Student) {
		s.FamilyID = &family.ID
		s.FatherMobile = strPtr("0772123456")
	}
	createStudent(t, db, tenantID, date(2023, time.February, 1), link)
	createStudent(t, db, tenantID, date(2024, time.February, 1), link)
	createStudent(t, db, tenantID, date(2025, time.February, 1), func(s *models.Student) {
		s.FatherMobile = strPtr("0772123456")
	})

	detection, err := DetectSiblings(db, tenantID)
	require.NoError(t, err)

	require.Equal(t, 1, detection.TotalConfirmed)
	assert.Equal(t, family.ID, *detection.ConfirmedFamilies[0].FamilyID)
	assert.Len(t, detection.ConfirmedFamilies[0].Students, 2)
	// The linked pair is off the table; one unlinked student is no group.
	assert.Equal(t, 0, detection.TotalSuggested)
}

func TestLinkSiblingsRejectsFewerThanTwo(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()
	student := createStudent(t, db, tenantID, date(2024, time.January, 1), nil)

	_, err := LinkSiblings(db, tenantID, []uuid.UUID{student.ID}, FamilyMeta{})
	assert.ErrorIs(t, err, ErrTooFewSiblings)

	var after models.Student
	require.NoError(t, db.First(&after, "id = ?", student.ID).Error)
	assert.Nil(t, after.FamilyID)
	assert.Equal(t, 0, after.SiblingPosition)
}

func TestLinkSiblingsCreatesFamilyAndOrdinals(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	older := createStudent(t, db, tenantID, date(2022, time.January, 15), func(s *models.Student) {
		s.FatherName = strPtr("James Okello")
	})
	younger := createStudent(t, db, tenantID, date(2024, time.March, 1), nil)

	// Caller order deliberately reversed; ordinals follow admission date.
	family, err := LinkSiblings(db, tenantID, []uuid.UUID{younger.ID, older.ID}, FamilyMeta{
		GuardianName: "James Okello",
	})
	require.NoError(t, err)
	assert.Equal(t, "James Okello", family.GuardianName)
	assert.Equal(t, 2, family.TotalChildren)

	var first, second models.Student
	require.NoError(t, db.First(&first, "id = ?", older.ID).Error)
	require.NoError(t, db.First(&second, "id = ?", younger.ID).Error)
	assert.Equal(t, family.ID, *first.FamilyID)
	assert.Equal(t, 1, first.SiblingPosition)
	assert.Equal(t, 2, second.SiblingPosition)
}

func TestLinkSiblingsUnionsExistingFamily(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	family := models.Family{TenantID: tenantID, GuardianName: "Namutebi", TotalChildren: 2}
	require.NoError(t, db.Create(&family).Error)

	link := func(s *models.Student) { s.FamilyID = &family.ID }
	linked1 := createStudent(t, db, tenantID, date(2021, time.January, 1), link)
	createStudent(t, db, tenantID, date(2022, time.January, 1), link)
	newcomer1 := createStudent(t, db, tenantID, date(2023, time.January, 1), nil)
	newcomer2 := createStudent(t, db, tenantID, date(2024, time.January, 1), nil)

	got, err := LinkSiblings(db, tenantID, []uuid.UUID{linked1.ID, newcomer1.ID, newcomer2.ID}, FamilyMeta{})
	require.NoError(t, err)

	// The existing family is reused; membership is the union of the old
	// members and the new ones, not just the ids passed in.
	assert.Equal(t, family.ID, got.ID)
	assert.Equal(t, 4, got.TotalChildren)

	var members []models.Student
	require.NoError(t, db.Where("family_id = ?", family.ID).Order("sibling_position asc").Find(&members).Error)
	require.Len(t, members, 4)
	for i, m := range members {
		assert.Equal(t, i+1, m.SiblingPosition)
	}
}

func TestLinkSiblingsIdempotent(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	a := createStudent(t, db, tenantID, date(2022, time.January, 1), nil)
	b := createStudent(t, db, tenantID, date(2023, time.January, 1), nil)

	first, err := LinkSiblings(db, tenantID, []uuid.UUID{a.ID, b.ID}, FamilyMeta{})
	require.NoError(t, err)
	second, err := LinkSiblings(db, tenantID, []uuid.UUID{a.ID, b.ID}, FamilyMeta{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalChildren, second.TotalChildren)

	var families []models.Family
	require.NoError(t, db.Where("tenant_id = ?", tenantID).Find(&families).Error)
	assert.Len(t, families, 1)
}

func TestLinkSiblingsUnknownStudentRollsBack(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	a := createStudent(t, db, tenantID, date(2022, time.January, 1), nil)
	ghost := uuid.New()

	_, err := LinkSiblings(db, tenantID, []uuid.UUID{a.ID, ghost}, FamilyMeta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ghost.String())

	// Nothing committed: no family, student untouched.
	var count int64
	require.NoError(t, db.Model(&models.Family{}).Where("tenant_id = ?", tenantID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var after models.Student
	require.NoError(t, db.First(&after, "id = ?", a.ID).Error)
	assert.Nil(t, after.FamilyID)
}

func TestRecomputeSiblingPositionsAfterDeactivation(t *testing.T) {
	db := database.ConnectTestDB(t)
	tenantID := uuid.New()

	a := createStudent(t, db, tenantID, date(2021, time.January, 1), nil)
	b := createStudent(t, db, tenantID, date(2022, time.January, 1), nil)
	c := createStudent(t, db, tenantID, date(2023, time.January, 1), nil)

	family, err := LinkSiblings(db, tenantID, []uuid.UUID{a.ID, b.ID, c.ID}, FamilyMeta{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", a.ID).
		Update("is_active", false).Error)
	require.NoError(t, RecomputeSiblingPositions(db, family.ID))

	var second, third models.Student
	require.NoError(t, db.First(&second, "id = ?", b.ID).Error)
	require.NoError(t, db.First(&third, "id = ?", c.ID).Error)
	assert.Equal(t, 1, second.SiblingPosition)
	assert.Equal(t, 2, third.SiblingPosition)

	var after models.Family
	require.NoError(t, db.First(&after, "id = ?", family.ID).Error)
	assert.Equal(t, 2, after.TotalChildren)
}
