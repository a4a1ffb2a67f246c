package models

import (
	"time"

	"github.com/google/uuid"
)

// Fee record payment statuses.
const (
	FeeStatusPending = "pending"
	FeeStatusPartial = "partial"
	FeeStatusPaid    = "paid"
)

// FeeRecord is one student's bill for one billing period. Discount totals
// are denormalized from the calculator output at billing time so a later
// policy change never rewrites history.
type FeeRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	Term string `gorm:"size:30;not null" json:"term"`
	Year int    `gorm:"not null" json:"year"`

	GrossAmount     float64 `gorm:"type:numeric(10,2);not null" json:"gross_amount"`
	DiscountPercent float64 `gorm:"type:numeric(5,2);default:0" json:"discount_percent"`
	DiscountAmount  float64 `gorm:"type:numeric(10,2);default:0" json:"discount_amount"`
	NetAmount       float64 `gorm:"type:numeric(10,2);not null" json:"net_amount"`
	PaidAmount      float64 `gorm:"type:numeric(10,2);default:0" json:"paid_amount"`

	Status  string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	DueDate time.Time `gorm:"not null;type:date" json:"due_date"`
	Overdue bool      `gorm:"default:false" json:"overdue"`

	Student  *Student      `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Charges  []FeeCharge   `gorm:"foreignkey:FeeRecordID" json:"charges,omitempty"`
	Payments []FeePayment  `gorm:"foreignkey:FeeRecordID" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Balance is the amount still owed.
func (f *FeeRecord) Balance() float64 {
	b := f.NetAmount - f.PaidAmount
	if b < 0 {
		return 0
	}
	return b
}

// RefreshStatus derives Status from the paid amount.
func (f *FeeRecord) RefreshStatus() {
	switch {
	case f.PaidAmount >= f.NetAmount:
		f.Status = FeeStatusPaid
	case f.PaidAmount > 0:
		f.Status = FeeStatusPartial
	default:
		f.Status = FeeStatusPending
	}
}

// FeeCharge is one itemized line on a fee record (tuition, transport, ...).
type FeeCharge struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	FeeRecordID uuid.UUID `gorm:"type:uuid;not null;index" json:"fee_record_id"`
	Label       string    `gorm:"size:255;not null" json:"label"`
	Amount      float64   `gorm:"type:numeric(10,2);not null" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}
