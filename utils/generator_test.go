package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueReceiptNumber(t *testing.T) {
	db := database.ConnectTestDB(t)

	number, err := GenerateUniqueReceiptNumber(db)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(number, "RCT-"))
	assert.Len(t, number, len("RCT-")+receiptNumberLength)
}

func TestGenerateUniqueReceiptNumberSkipsTaken(t *testing.T) {
	db := database.ConnectTestDB(t)

	taken := models.FeePayment{
		TenantID:      uuid.New(),
		FeeRecordID:   uuid.New(),
		Amount:        5000,
		Method:        models.PaymentMethodCash,
		ReceiptNumber: "RCT-AAAA1111",
		CollectedByID: uuid.New(),
	}
	require.NoError(t, db.Create(&taken).Error)

	number, err := GenerateUniqueReceiptNumber(db)
	require.NoError(t, err)
	assert.NotEqual(t, taken.ReceiptNumber, number)
}
