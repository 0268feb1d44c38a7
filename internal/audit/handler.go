package audit

import (
	"fmt"

	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID            uint               `json:"id"`
	CreatedAt     string             `json:"created_at"`
	PersonnelID   uint               `json:"personnel_id"`
	PersonnelName string             `json:"personnel_name"`
	TeamID        *uint              `json:"team_id"`
	EntityType    string             `json:"entity_type"`
	EntityID      uint               `json:"entity_id"`
	Action        models.AuditAction `json:"action"`
	Description   string             `json:"description"`
}

// GET /api/audit-logs?entity_type=part&entity_id=1&personnel_id=1
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityType := c.Query("entity_type")
		entityIDStr := c.Query("entity_id")
		personnelIDStr := c.Query("personnel_id")

		dbq := database.DB.Model(&models.AuditLog{})

		if entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		if entityIDStr != "" {
			var eid uint
			if _, err := fmt.Sscan(entityIDStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		if personnelIDStr != "" {
			var pid uint
			if _, err := fmt.Sscan(personnelIDStr, &pid); err == nil && pid > 0 {
				dbq = dbq.Where("personnel_id = ?", pid)
			}
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(200).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:            l.ID,
				CreatedAt:     l.CreatedAt.Format("2006-01-02 15:04:05"),
				PersonnelID:   l.PersonnelID,
				PersonnelName: l.PersonnelName,
				TeamID:        l.TeamID,
				EntityType:    l.EntityType,
				EntityID:      l.EntityID,
				Action:        l.Action,
				Description:   l.Description,
			})
		}

		return c.JSON(resp)
	}
}
