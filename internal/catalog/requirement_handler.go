package catalog

import (
	"fmt"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RequirementResponse struct {
	ID               uint   `json:"id"`
	AircraftID       uint   `json:"aircraft_id"`
	AircraftName     string `json:"aircraft_name"`
	PartTypeID       uint   `json:"part_type_id"`
	PartTypeName     string `json:"part_type_name"`
	RequiredQuantity int    `json:"required_quantity"`
}

type CreateRequirementRequest struct {
	AircraftID       uint `json:"aircraft_id"`
	PartTypeID       uint `json:"part_type_id"`
	RequiredQuantity int  `json:"required_quantity"`
}

type UpdateRequirementRequest struct {
	RequiredQuantity *int `json:"required_quantity"`
}

func toRequirementResponse(r *models.AircraftPartRequirement) RequirementResponse {
	return RequirementResponse{
		ID:               r.ID,
		AircraftID:       r.AircraftID,
		AircraftName:     r.Aircraft.Name,
		PartTypeID:       r.PartTypeID,
		PartTypeName:     r.PartType.Name,
		RequiredQuantity: r.RequiredQuantity,
	}
}

// POST /api/requirements
// (aircraft, part_type) çifti başına tek gereksinim satırı olabilir.
func CreateRequirementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		var body CreateRequirementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.RequiredQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "required_quantity negatif olamaz")
		}

		var aircraft models.Aircraft
		if err := database.DB.Where("is_deleted = ?", false).First(&aircraft, "id = ?", body.AircraftID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Uçak modeli bulunamadı")
		}

		var partType models.PartType
		if err := database.DB.Where("is_deleted = ?", false).First(&partType, "id = ?", body.PartTypeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Parça tipi bulunamadı")
		}

		var exist models.AircraftPartRequirement
		if err := database.DB.Where("aircraft_id = ? AND part_type_id = ?", aircraft.ID, partType.ID).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("%s için %s gereksinimi zaten tanımlı", aircraft.Name, partType.Name))
		}

		req := models.AircraftPartRequirement{
			AircraftID:       aircraft.ID,
			PartTypeID:       partType.ID,
			RequiredQuantity: body.RequiredQuantity,
		}
		if err := database.DB.Create(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gereksinim oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "requirement",
			EntityID:      req.ID,
			Action:        models.AuditActionCreate,
			Description:   fmt.Sprintf("Gereksinim tanımlandı: %s için %d adet %s", aircraft.Name, req.RequiredQuantity, partType.Name),
			Before:        nil,
			After:         req,
		})

		req.Aircraft = aircraft
		req.PartType = partType
		return c.Status(fiber.StatusCreated).JSON(toRequirementResponse(&req))
	}
}

// GET /api/requirements?aircraft_id=1
func ListRequirementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AircraftPartRequirement{}).
			Preload("Aircraft").
			Preload("PartType")

		aircraftIDStr := c.Query("aircraft_id")
		if aircraftIDStr != "" {
			var aid uint
			if _, err := fmt.Sscan(aircraftIDStr, &aid); err != nil || aid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "aircraft_id geçersiz")
			}
			dbq = dbq.Where("aircraft_id = ?", aid)
		}

		var reqs []models.AircraftPartRequirement
		if err := dbq.Order("aircraft_id asc, part_type_id asc").Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gereksinimler listelenemedi")
		}

		res := make([]RequirementResponse, 0, len(reqs))
		for i := range reqs {
			res = append(res, toRequirementResponse(&reqs[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/aircrafts/:id/requirements
// Belirli bir uçak modeli için gerekli parça listesini döndürür.
func ListAircraftRequirementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aircraft models.Aircraft
		if err := database.DB.Where("is_deleted = ?", false).First(&aircraft, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Uçak modeli bulunamadı")
		}

		var reqs []models.AircraftPartRequirement
		if err := database.DB.Preload("Aircraft").Preload("PartType").
			Where("aircraft_id = ?", aircraft.ID).
			Order("part_type_id asc").
			Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gereksinimler listelenemedi")
		}

		res := make([]RequirementResponse, 0, len(reqs))
		for i := range reqs {
			res = append(res, toRequirementResponse(&reqs[i]))
		}
		return c.JSON(res)
	}
}

// PUT /api/requirements/:id
func UpdateRequirementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var req models.AircraftPartRequirement
		if err := database.DB.Preload("Aircraft").Preload("PartType").First(&req, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gereksinim bulunamadı")
		}
		before := req

		var body UpdateRequirementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.RequiredQuantity != nil {
			if *body.RequiredQuantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "required_quantity negatif olamaz")
			}
			req.RequiredQuantity = *body.RequiredQuantity
		}

		if err := database.DB.Save(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gereksinim güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "requirement",
			EntityID:      req.ID,
			Action:        models.AuditActionUpdate,
			Description:   fmt.Sprintf("Gereksinim güncellendi: %s / %s -> %d", req.Aircraft.Name, req.PartType.Name, req.RequiredQuantity),
			Before:        before,
			After:         req,
		})

		return c.JSON(toRequirementResponse(&req))
	}
}

// DELETE /api/requirements/:id
// Gereksinim referans verisidir, unique (aircraft, part_type) çifti
// yeniden tanımlanabilsin diye fiziksel silinir.
func DeleteRequirementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var req models.AircraftPartRequirement
		if err := database.DB.First(&req, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gereksinim bulunamadı")
		}

		if err := database.DB.Delete(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gereksinim silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "requirement",
			EntityID:      req.ID,
			Action:        models.AuditActionDelete,
			Description:   fmt.Sprintf("Gereksinim silindi (aircraft=%d part_type=%d)", req.AircraftID, req.PartTypeID),
			Before:        req,
			After:         nil,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
