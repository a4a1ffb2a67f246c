package utils

import (
	"math/rand"
	"time"

	"github.com/kasozi256/schooldesk/models"
	"gorm.io/gorm"
)

const receiptNumberLength = 8
const receiptBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueReceiptNumber returns a receipt number no existing payment
// uses. Collisions just retry; the space is large enough that this
// terminates quickly.
func GenerateUniqueReceiptNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, receiptNumberLength)
		for i := range b {
			b[i] = receiptBytes[seededRand.Intn(len(receiptBytes))]
		}
		number := "RCT-" + string(b)

		var payment models.FeePayment
		err := tx.Where("receipt_number = ?", number).First(&payment).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}
