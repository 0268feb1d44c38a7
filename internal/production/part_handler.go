package production

import (
	"errors"
	"fmt"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreatePartsRequest struct {
	AircraftID uint              `json:"aircraft_id"`
	PartTypeID uint              `json:"part_type_id"`
	Count      int               `json:"count"`  // varsayılan 1
	Status     models.PartStatus `json:"status"` // varsayılan "stock"
}

type PartResponse struct {
	ID           uint              `json:"id"`
	SerialNumber string            `json:"serial_number"`
	PartTypeID   uint              `json:"part_type_id"`
	PartTypeName string            `json:"part_type_name"`
	AircraftID   uint              `json:"aircraft_id"`
	AircraftName string            `json:"aircraft_name"`
	TeamID       uint              `json:"team_id"`
	Status       models.PartStatus `json:"status"`
	CreatedAt    string            `json:"created_at"`
}

// Yardımcı: JWT'deki personeli takımıyla birlikte yükle
func getPersonnelWithTeam(c *fiber.Ctx) (*models.Personnel, error) {
	personnelIDVal := c.Locals(auth.CtxPersonnelIDKey)
	personnelID, ok := personnelIDVal.(uint)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Personel bilgisi alınamadı")
	}

	var p models.Personnel
	if err := database.DB.Preload("Team").
		Where("is_deleted = ?", false).
		First(&p, "id = ?", personnelID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "Personel bilgisi bulunamadı")
	}

	return &p, nil
}

// Yardımcı: Servis hatalarını HTTP yanıtına çevir
func respondServiceError(c *fiber.Ctx, err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound.Error())
	}

	var unauthorized *UnauthorizedError
	if errors.As(err, &unauthorized) {
		return fiber.NewError(fiber.StatusForbidden, unauthorized.Error())
	}

	var invalid *InvalidArgumentError
	if errors.As(err, &invalid) {
		return fiber.NewError(fiber.StatusBadRequest, invalid.Error())
	}

	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":         "Stokta yeterli parça bulunmuyor",
			"missing_parts": insufficient.Missing,
		})
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return fiber.NewError(fiber.StatusConflict, conflict.Error())
	}

	return err
}

// POST /api/parts
// Personelin takımı adına count adet parça üretir.
func CreatePartsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := getPersonnelWithTeam(c)
		if err != nil {
			return err
		}

		var body CreatePartsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Count == 0 {
			body.Count = 1
		}

		result, err := CreateParts(database.DB, &personnel.Team, CreatePartsInput{
			AircraftID: body.AircraftID,
			PartTypeID: body.PartTypeID,
			Count:      body.Count,
			Status:     body.Status,
		})
		if err != nil {
			return respondServiceError(c, err)
		}

		var aircraft models.Aircraft
		database.DB.First(&aircraft, body.AircraftID)
		var partType models.PartType
		database.DB.First(&partType, body.PartTypeID)

		parts := make([]PartResponse, 0, len(result.Parts))
		for _, p := range result.Parts {
			parts = append(parts, PartResponse{
				ID:           p.ID,
				SerialNumber: p.SerialNumber,
				PartTypeID:   p.PartTypeID,
				PartTypeName: partType.Name,
				AircraftID:   p.AircraftID,
				AircraftName: aircraft.Name,
				TeamID:       p.TeamID,
				Status:       p.Status,
				CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "part",
			EntityID:      result.Parts[0].ID,
			Action:        models.AuditActionCreate,
			Description:   fmt.Sprintf("Parça üretimi: %d adet %s (%s)", body.Count, partType.Name, aircraft.Name),
			Before:        nil,
			After:         result.Parts,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": fmt.Sprintf("%d adet parça başarıyla oluşturuldu", body.Count),
			"parts":   parts,
			"stock_info": fiber.Map{
				"aircraft":      aircraft.Name,
				"part_type":     partType.Name,
				"current_stock": result.Stock.Quantity,
				"added_stock":   body.Count,
			},
		})
	}
}

// GET /api/parts
// Montaj takımı stoktaki tüm parçaları, üretim takımları kendi ürettiği
// parçaları görür.
func ListPartsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := getPersonnelWithTeam(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Part{}).
			Preload("PartType").
			Preload("Aircraft").
			Where("is_deleted = ?", false)

		if personnel.Team.Role == models.TeamRoleAssembly {
			dbq = dbq.Where("status = ?", models.PartStatusInStock)
		} else {
			dbq = dbq.Where("team_id = ?", personnel.TeamID)
		}

		var parts []models.Part
		if err := dbq.Order("id asc").Find(&parts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parçalar listelenemedi")
		}

		resp := make([]PartResponse, 0, len(parts))
		for _, p := range parts {
			resp = append(resp, PartResponse{
				ID:           p.ID,
				SerialNumber: p.SerialNumber,
				PartTypeID:   p.PartTypeID,
				PartTypeName: p.PartType.Name,
				AircraftID:   p.AircraftID,
				AircraftName: p.Aircraft.Name,
				TeamID:       p.TeamID,
				Status:       p.Status,
				CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/parts/:id
// Parçayı soft-delete eder, stoktaysa sayacı düşürür.
func RetirePartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := getPersonnelWithTeam(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parça ID")
		}

		part, err := RetirePart(database.DB, uint(id))
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "part",
			EntityID:      part.ID,
			Action:        models.AuditActionDelete,
			Description:   fmt.Sprintf("Parça silindi: %s (%s)", part.PartType.Name, part.Aircraft.Name),
			Before:        part,
			After:         nil,
		})

		return c.JSON(fiber.Map{
			"message": "Parça başarıyla silindi",
			"part_info": fiber.Map{
				"id":        part.ID,
				"part_type": part.PartType.Name,
				"aircraft":  part.Aircraft.Name,
			},
		})
	}
}

type UpdatePartStatusRequest struct {
	Status models.PartStatus `json:"status"`
}

// POST /api/parts/:id/status
func UpdatePartStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := getPersonnelWithTeam(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parça ID")
		}

		var body UpdatePartStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		part, err := UpdatePartStatus(database.DB, uint(id), body.Status)
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "part",
			EntityID:      part.ID,
			Action:        models.AuditActionUpdate,
			Description:   fmt.Sprintf("Parça durumu güncellendi: %d -> %s", part.ID, part.Status),
			Before:        nil,
			After:         part,
		})

		return c.JSON(fiber.Map{
			"status": "başarılı",
			"part": fiber.Map{
				"id":     part.ID,
				"status": part.Status,
			},
		})
	}
}
