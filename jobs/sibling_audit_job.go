package jobs

import (
	"log"

	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
	"github.com/kasozi256/schooldesk/services"
)

// AuditSiblingPositions recomputes ordinal positions for every family,
// catching drift from deactivated or transferred students. Recomputation
// is idempotent, so running against an unchanged family writes nothing.
func AuditSiblingPositions() {
	log.Println("Running job: AuditSiblingPositions...")

	var families []models.Family
	if err := database.DB.Find(&families).Error; err != nil {
		log.Printf("Error loading families: %v", err)
		return
	}

	audited := 0
	for _, family := range families {
		if err := services.RecomputeSiblingPositions(database.DB, family.ID); err != nil {
			log.Printf("Error recomputing positions for family %s: %v", family.ID, err)
			continue
		}
		audited++
	}
	log.Printf("✅ Audited sibling positions for %d/%d families.", audited, len(families))
}
