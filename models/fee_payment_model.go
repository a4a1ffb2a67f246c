package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods accepted at the fee desk.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodBank     = "bank"
	PaymentMethodMobile   = "mobile_money"
	PaymentMethodCheque   = "cheque"
)

// FeePayment is one collection against a fee record, issued a receipt
// number at the desk. ReceiptURL points at the rendered PDF once the
// receipt service has uploaded it.
type FeePayment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FeeRecordID uuid.UUID `gorm:"type:uuid;not null;index" json:"fee_record_id"`

	Amount        float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Method        string    `gorm:"size:20;not null;default:'cash'" json:"method"`
	ReceiptNumber string    `gorm:"size:30;not null;unique" json:"receipt_number"`
	ReceiptURL    *string   `gorm:"size:255" json:"receipt_url"`
	Reference     *string   `gorm:"size:255" json:"reference"`

	CollectedByID uuid.UUID `gorm:"type:uuid;not null" json:"collected_by_id"`
	CollectedBy   *User     `gorm:"foreignkey:CollectedByID" json:"collected_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
