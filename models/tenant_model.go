package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TenantStatus values for the subscription lifecycle of a school.
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
	TenantStatusTrial    = "trial"
)

// Feature is a named capability a tenant may have enabled. The set is
// closed; FeatureCore is reserved and always available to every tenant.
type Feature string

const (
	FeatureCore       Feature = "core"
	FeatureFees       Feature = "fees"
	FeatureExams      Feature = "exams"
	FeatureAttendance Feature = "attendance"
	FeatureTransport  Feature = "transport"
	FeatureLibrary    Feature = "library"
	FeatureMessaging  Feature = "messaging"
	FeatureReports    Feature = "reports"
)

var knownFeatures = map[Feature]bool{
	FeatureCore:       true,
	FeatureFees:       true,
	FeatureExams:      true,
	FeatureAttendance: true,
	FeatureTransport:  true,
	FeatureLibrary:    true,
	FeatureMessaging:  true,
	FeatureReports:    true,
}

// ParseFeature rejects tags outside the closed set so a typo in a request
// can never silently gate (or un-gate) anything.
func ParseFeature(s string) (Feature, bool) {
	f := Feature(s)
	return f, knownFeatures[f]
}

type Tenant struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	Code         string    `gorm:"size:50;not null;unique" json:"code"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Status       string    `gorm:"size:20;not null;default:'trial'" json:"status"`
	Features     string    `gorm:"type:text;not null;default:''" json:"-"`
	ContactName  *string   `gorm:"size:255" json:"contact_name"`
	ContactEmail *string   `gorm:"size:255" json:"contact_email"`
	ContactPhone *string   `gorm:"size:30" json:"contact_phone"`
	Address      *string   `gorm:"type:text" json:"address"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// EnabledFeatures decodes the comma-separated feature column, dropping
// anything outside the closed set.
func (t *Tenant) EnabledFeatures() []Feature {
	var out []Feature
	for _, raw := range splitCSV(t.Features) {
		if f, ok := ParseFeature(raw); ok {
			out = append(out, f)
		}
	}
	return out
}

// HasFeature reports whether the tenant may use the given feature.
// FeatureCore is always on.
func (t *Tenant) HasFeature(f Feature) bool {
	if f == FeatureCore {
		return true
	}
	for _, enabled := range t.EnabledFeatures() {
		if enabled == f {
			return true
		}
	}
	return false
}

// SetFeatures replaces the enabled set, silently discarding unknown tags.
func (t *Tenant) SetFeatures(features []Feature) {
	var valid []string
	for _, f := range features {
		if knownFeatures[f] {
			valid = append(valid, string(f))
		}
	}
	t.Features = joinCSV(valid)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinCSV(parts []string) string {
	return strings.Join(parts, ",")
}
