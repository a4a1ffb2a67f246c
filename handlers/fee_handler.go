package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/middleware"
	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/services"
	"github.com/kasozi256/schooldesk/utils"
	"github.com/kasozi256/schooldesk/websocket"
	"gorm.io/gorm"
)

type DiscountPolicyRequest struct {
	Name            string   `json:"name" validate:"required,min=3"`
	Type            string   `json:"type" validate:"required,oneof=staff_child sibling merit financial_aid early_payment custom"`
	Percentage      float64  `json:"percentage" validate:"gte=0,lte=100"`
	FixedAmount     float64  `json:"fixed_amount" validate:"gte=0"`
	SiblingPosition *int     `json:"sibling_position" validate:"omitempty,gte=1"`
	MinMeritPercent *float64 `json:"min_merit_percent" validate:"omitempty,gte=0,lte=100"`
}

func CreateDiscountPolicy(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required"})
	}

	var req DiscountPolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Percentage == 0 && req.FixedAmount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A policy needs a percentage or a fixed amount"})
	}

	policy := models.DiscountPolicy{
		TenantID:        res.TenantID,
		Name:            req.Name,
		Type:            req.Type,
		Percentage:      req.Percentage,
		FixedAmount:     req.FixedAmount,
		SiblingPosition: req.SiblingPosition,
		MinMeritPercent: req.MinMeritPercent,
		IsActive:        true,
	}
	if err := database.DB.Create(&policy).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create policy"})
	}
	return c.Status(fiber.StatusCreated).JSON(policy)
}

func ListDiscountPolicies(c *fiber.Ctx) error {
	var policies []models.DiscountPolicy
	query := database.DB.Scopes(middleware.TenantScope(c)).Order("created_at")
	if err := query.Find(&policies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list policies"})
	}
	return c.JSON(fiber.Map{"policies": policies, "total": len(policies)})
}

func DeactivateDiscountPolicy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("policyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid policy id"})
	}

	var policy models.DiscountPolicy
	query := database.DB.Scopes(middleware.TenantScope(c))
	if err := query.First(&policy, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Policy not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	policy.IsActive = false
	if err := database.DB.Save(&policy).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate policy"})
	}
	return c.JSON(policy)
}

// PreviewDiscounts runs the calculator for one student without writing
// anything; the fee desk uses it before billing.
func PreviewDiscounts(c *fiber.Ctx) error {
	student, err := loadStudent(c)
	if err != nil {
		return err
	}
	result := services.ComputeDiscounts(database.DB, student, nil)
	return c.JSON(result)
}

type ChargeInput struct {
	Label  string  `json:"label" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type CreateFeeRecordRequest struct {
	StudentID uuid.UUID     `json:"student_id" validate:"required"`
	Term      string        `json:"term" validate:"required"`
	Year      int           `json:"year" validate:"required,gte=2000"`
	DueDate   time.Time     `json:"due_date" validate:"required"`
	Charges   []ChargeInput `json:"charges" validate:"required,min=1,dive"`
}

// CreateFeeRecord bills a student for one period. Gross is the sum of the
// itemized charges; the discount calculator's output is applied and frozen
// onto the record.
func CreateFeeRecord(c *fiber.Ctx) error {
	res := middleware.CurrentTenant(c)
	if res.Unscoped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A tenant scope is required"})
	}

	var req CreateFeeRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.Student
	if err := database.DB.Where("tenant_id = ?", res.TenantID).First(&student, "id = ?", req.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var gross float64
	for _, charge := range req.Charges {
		gross += charge.Amount
	}

	// A degraded discount result bills at gross rather than blocking.
	discounts := services.ComputeDiscounts(database.DB, &student, nil)
	net := gross
	if discounts.Success {
		net = discounts.ApplyTo(gross)
	}

	record := models.FeeRecord{
		TenantID:        res.TenantID,
		StudentID:       student.ID,
		Term:            req.Term,
		Year:            req.Year,
		GrossAmount:     gross,
		DiscountPercent: discounts.TotalDiscountPercentage,
		DiscountAmount:  discounts.TotalDiscountAmount,
		NetAmount:       net,
		Status:          models.FeeStatusPending,
		DueDate:         req.DueDate,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for _, charge := range req.Charges {
			feeCharge := models.FeeCharge{
				FeeRecordID: record.ID,
				Label:       charge.Label,
				Amount:      charge.Amount,
			}
			if err := tx.Create(&feeCharge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create fee record"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"fee_record": record,
		"discounts":  discounts,
	})
}

func ListFeeRecords(c *fiber.Ctx) error {
	var records []models.FeeRecord
	query := database.DB.Scopes(middleware.TenantScope(c)).Preload("Student").Preload("Charges")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if c.QueryBool("overdue") {
		query = query.Where("overdue = ?", true)
	}

	if err := query.Order("created_at desc").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list fee records"})
	}
	return c.JSON(fiber.Map{"fee_records": records, "total": len(records)})
}

func GetFeeRecord(c *fiber.Ctx) error {
	record, err := loadFeeRecord(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"fee_record": record, "balance": record.Balance()})
}

type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required,oneof=cash bank mobile_money cheque"`
	Reference *string `json:"reference"`
}

// RecordPayment collects money against a fee record: issues a receipt
// number, refreshes the record status, pushes a live notification to the
// tenant's dashboards, and renders the receipt PDF in the background.
func RecordPayment(c *fiber.Ctx) error {
	record, err := loadFeeRecord(c)
	if err != nil {
		return err
	}

	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Amount > record.Balance() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Amount exceeds outstanding balance of %.2f", record.Balance()),
		})
	}

	collector := middleware.CurrentUser(c)
	var payment models.FeePayment

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		receiptNumber, err := utils.GenerateUniqueReceiptNumber(tx)
		if err != nil {
			return err
		}

		payment = models.FeePayment{
			TenantID:      record.TenantID,
			FeeRecordID:   record.ID,
			Amount:        req.Amount,
			Method:        req.Method,
			ReceiptNumber: receiptNumber,
			Reference:     req.Reference,
			CollectedByID: collector.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		record.PaidAmount += req.Amount
		record.RefreshStatus()
		if record.Status == models.FeeStatusPaid {
			record.Overdue = false
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
	}

	var student models.Student
	var tenant models.Tenant
	if database.DB.First(&student, "id = ?", record.StudentID).Error == nil &&
		database.DB.First(&tenant, "id = ?", record.TenantID).Error == nil {
		go services.GenerateReceipt(payment, *record, student, tenant)
		websocket.Push(record.TenantID, "fee_payment", "Payment received",
			fmt.Sprintf("%s paid %.2f (%s)", student.FullName(), payment.Amount, payment.ReceiptNumber),
			fiber.Map{"fee_record_id": record.ID, "payment_id": payment.ID})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment":    payment,
		"fee_record": record,
		"balance":    record.Balance(),
	})
}

func loadFeeRecord(c *fiber.Ctx) (*models.FeeRecord, error) {
	id, err := uuid.Parse(c.Params("feeRecordId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee record id"})
	}

	var record models.FeeRecord
	query := database.DB.Scopes(middleware.TenantScope(c)).Preload("Charges").Preload("Payments")
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee record not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return &record, nil
}
