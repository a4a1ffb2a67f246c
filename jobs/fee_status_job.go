package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/websocket"
)

// FlagOverdueFees marks unsettled fee records past their due date and
// notifies each affected tenant's dashboards. Records are updated
// independently; a failure on one leaves the rest flagged.
func FlagOverdueFees() {
	log.Println("Running job: FlagOverdueFees...")

	var records []models.FeeRecord
	err := database.DB.
		Where("status IN ? AND overdue = ? AND due_date < ?",
			[]string{models.FeeStatusPending, models.FeeStatusPartial}, false, time.Now()).
		Find(&records).Error
	if err != nil {
		log.Printf("Error loading due fee records: %v", err)
		return
	}

	if len(records) == 0 {
		return
	}

	flaggedPerTenant := map[uuid.UUID]int{}
	for _, record := range records {
		err := database.DB.Model(&models.FeeRecord{}).
			Where("id = ?", record.ID).
			Update("overdue", true).Error
		if err != nil {
			log.Printf("Error flagging fee record %s: %v", record.ID, err)
			continue
		}
		flaggedPerTenant[record.TenantID]++
	}

	for tenantID, count := range flaggedPerTenant {
		websocket.Push(tenantID, "fees_overdue", "Fees overdue",
			fmt.Sprintf("%d fee record(s) are past their due date", count), nil)
	}
	log.Printf("✅ Flagged %d overdue fee record(s).", len(records))
}
