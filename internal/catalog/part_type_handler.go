package catalog

import (
	"fmt"
	"strings"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PartTypeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CreatePartTypeRequest struct {
	Name string `json:"name"`
}

type UpdatePartTypeRequest struct {
	Name *string `json:"name"`
}

// POST /api/part-types
func CreatePartTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		var body CreatePartTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Parça tipi adı zorunlu")
		}

		var exist models.PartType
		if err := database.DB.Where("name = ? AND is_deleted = ?", body.Name, false).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu isimde bir parça tipi zaten var")
		}

		pt := models.PartType{Name: body.Name}
		if err := database.DB.Create(&pt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parça tipi oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "part_type",
			EntityID:      pt.ID,
			Action:        models.AuditActionCreate,
			Description:   fmt.Sprintf("Parça tipi oluşturuldu: %s", pt.Name),
			Before:        nil,
			After:         pt,
		})

		return c.Status(fiber.StatusCreated).JSON(PartTypeResponse{ID: pt.ID, Name: pt.Name})
	}
}

// GET /api/part-types
func ListPartTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var partTypes []models.PartType
		if err := database.DB.Where("is_deleted = ?", false).Order("name asc").Find(&partTypes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parça tipleri listelenemedi")
		}

		res := make([]PartTypeResponse, 0, len(partTypes))
		for _, pt := range partTypes {
			res = append(res, PartTypeResponse{ID: pt.ID, Name: pt.Name})
		}
		return c.JSON(res)
	}
}

// PUT /api/part-types/:id
func UpdatePartTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var pt models.PartType
		if err := database.DB.Where("is_deleted = ?", false).First(&pt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parça tipi bulunamadı")
		}
		before := pt

		var body UpdatePartTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Parça tipi adı boş olamaz")
			}
			pt.Name = name
		}

		if err := database.DB.Save(&pt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parça tipi güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "part_type",
			EntityID:      pt.ID,
			Action:        models.AuditActionUpdate,
			Description:   fmt.Sprintf("Parça tipi güncellendi: %s", pt.Name),
			Before:        before,
			After:         pt,
		})

		return c.JSON(PartTypeResponse{ID: pt.ID, Name: pt.Name})
	}
}

// DELETE /api/part-types/:id
func DeletePartTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var pt models.PartType
		if err := database.DB.Where("is_deleted = ?", false).First(&pt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parça tipi bulunamadı")
		}

		if err := database.DB.Model(&pt).Update("is_deleted", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parça tipi silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "part_type",
			EntityID:      pt.ID,
			Action:        models.AuditActionDelete,
			Description:   fmt.Sprintf("Parça tipi silindi: %s", pt.Name),
			Before:        pt,
			After:         nil,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
