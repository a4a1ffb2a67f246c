package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFeatureRejectsUnknownTags(t *testing.T) {
	_, ok := ParseFeature("fees")
	assert.True(t, ok)

	_, ok = ParseFeature("payroll")
	assert.False(t, ok)

	_, ok = ParseFeature("")
	assert.False(t, ok)
}

func TestTenantFeatureRoundTrip(t *testing.T) {
	tenant := Tenant{}
	tenant.SetFeatures([]Feature{FeatureFees, FeatureExams, Feature("bogus")})

	assert.Equal(t, "fees,exams", tenant.Features)
	assert.Equal(t, []Feature{FeatureFees, FeatureExams}, tenant.EnabledFeatures())
}

func TestTenantHasFeature(t *testing.T) {
	tenant := Tenant{Features: "fees, attendance"}

	assert.True(t, tenant.HasFeature(FeatureFees))
	assert.True(t, tenant.HasFeature(FeatureAttendance))
	assert.False(t, tenant.HasFeature(FeatureExams))

	// Core is reserved and always on, enabled set or not.
	assert.True(t, tenant.HasFeature(FeatureCore))
	assert.True(t, (&Tenant{}).HasFeature(FeatureCore))
}

func TestEnabledFeaturesDropsGarbage(t *testing.T) {
	tenant := Tenant{Features: "fees,,unknown ,exams"}
	assert.Equal(t, []Feature{FeatureFees, FeatureExams}, tenant.EnabledFeatures())
}
