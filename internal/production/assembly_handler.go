package production

import (
	"fmt"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AssembleRequest struct {
	AircraftID uint `json:"aircraft_id"`
}

type ProducedAircraftResponse struct {
	ID           uint           `json:"id"`
	SerialNumber string         `json:"serial_number"`
	AircraftID   uint           `json:"aircraft_id"`
	AircraftName string         `json:"aircraft_name"`
	ProducedAt   string         `json:"produced_at"`
	Parts        []PartResponse `json:"parts"`
}

func toProducedAircraftResponse(p *models.ProducedAircraft) ProducedAircraftResponse {
	parts := make([]PartResponse, 0, len(p.Links))
	for _, link := range p.Links {
		parts = append(parts, PartResponse{
			ID:           link.Part.ID,
			SerialNumber: link.Part.SerialNumber,
			PartTypeID:   link.Part.PartTypeID,
			PartTypeName: link.Part.PartType.Name,
			AircraftID:   link.Part.AircraftID,
			AircraftName: p.Aircraft.Name,
			TeamID:       link.Part.TeamID,
			Status:       link.Part.Status,
			CreatedAt:    link.Part.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return ProducedAircraftResponse{
		ID:           p.ID,
		SerialNumber: p.SerialNumber,
		AircraftID:   p.AircraftID,
		AircraftName: p.Aircraft.Name,
		ProducedAt:   p.ProducedAt.Format("2006-01-02 15:04:05"),
		Parts:        parts,
	}
}

// POST /api/produced-aircrafts
// Montaj: Gereksinimler stoktan karşılanıyorsa parçaları tüketip
// üretilmiş uçak kaydı oluşturur.
func AssembleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := getPersonnelWithTeam(c)
		if err != nil {
			return err
		}

		var body AssembleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		produced, err := Assemble(database.DB, &personnel.Team, body.AircraftID)
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "produced_aircraft",
			EntityID:      produced.ID,
			Action:        models.AuditActionCreate,
			Description:   fmt.Sprintf("Uçak üretildi: %s (%d parça)", produced.Aircraft.Name, len(produced.Links)),
			Before:        nil,
			After:         produced,
		})

		return c.Status(fiber.StatusCreated).JSON(toProducedAircraftResponse(produced))
	}
}

// GET /api/produced-aircrafts
func ListProducedAircraftsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var producedList []models.ProducedAircraft
		if err := database.DB.
			Preload("Aircraft").
			Preload("Links").
			Preload("Links.Part").
			Preload("Links.Part.PartType").
			Where("is_deleted = ?", false).
			Order("produced_at DESC, id DESC").
			Find(&producedList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretilen uçaklar listelenemedi")
		}

		resp := make([]ProducedAircraftResponse, 0, len(producedList))
		for i := range producedList {
			resp = append(resp, toProducedAircraftResponse(&producedList[i]))
		}

		return c.JSON(resp)
	}
}
