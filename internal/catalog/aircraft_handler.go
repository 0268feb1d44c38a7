package catalog

import (
	"fmt"
	"strings"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Yardımcı: JWT'deki personeli yükle (audit kayıtları için)
func currentPersonnel(c *fiber.Ctx) (*models.Personnel, error) {
	personnelID, ok := c.Locals(auth.CtxPersonnelIDKey).(uint)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Personel bilgisi alınamadı")
	}

	var p models.Personnel
	if err := database.DB.Where("is_deleted = ?", false).
		First(&p, "id = ?", personnelID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "Personel bilgisi bulunamadı")
	}

	return &p, nil
}

type AircraftResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type CreateAircraftRequest struct {
	Name string `json:"name"`
}

type UpdateAircraftRequest struct {
	Name *string `json:"name"`
}

// POST /api/aircrafts
func CreateAircraftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		var body CreateAircraftRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Uçak adı zorunlu")
		}

		var exist models.Aircraft
		if err := database.DB.Where("name = ? AND is_deleted = ?", body.Name, false).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu isimde bir uçak modeli zaten var")
		}

		aircraft := models.Aircraft{Name: body.Name}
		if err := database.DB.Create(&aircraft).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uçak modeli oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "aircraft",
			EntityID:      aircraft.ID,
			Action:        models.AuditActionCreate,
			Description:   fmt.Sprintf("Uçak modeli oluşturuldu: %s", aircraft.Name),
			Before:        nil,
			After:         aircraft,
		})

		return c.Status(fiber.StatusCreated).JSON(AircraftResponse{
			ID:        aircraft.ID,
			Name:      aircraft.Name,
			CreatedAt: aircraft.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/aircrafts
func ListAircraftsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var aircrafts []models.Aircraft
		if err := database.DB.Where("is_deleted = ?", false).Order("name asc").Find(&aircrafts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uçak modelleri listelenemedi")
		}

		res := make([]AircraftResponse, 0, len(aircrafts))
		for _, a := range aircrafts {
			res = append(res, AircraftResponse{
				ID:        a.ID,
				Name:      a.Name,
				CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// GET /api/aircrafts/:id
func GetAircraftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aircraft models.Aircraft
		if err := database.DB.Where("is_deleted = ?", false).First(&aircraft, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Uçak modeli bulunamadı")
		}

		return c.JSON(AircraftResponse{
			ID:        aircraft.ID,
			Name:      aircraft.Name,
			CreatedAt: aircraft.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// PUT /api/aircrafts/:id
func UpdateAircraftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var aircraft models.Aircraft
		if err := database.DB.Where("is_deleted = ?", false).First(&aircraft, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Uçak modeli bulunamadı")
		}
		before := aircraft

		var body UpdateAircraftRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Uçak adı boş olamaz")
			}
			aircraft.Name = name
		}

		if err := database.DB.Save(&aircraft).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uçak modeli güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "aircraft",
			EntityID:      aircraft.ID,
			Action:        models.AuditActionUpdate,
			Description:   fmt.Sprintf("Uçak modeli güncellendi: %s", aircraft.Name),
			Before:        before,
			After:         aircraft,
		})

		return c.JSON(AircraftResponse{
			ID:        aircraft.ID,
			Name:      aircraft.Name,
			CreatedAt: aircraft.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/aircrafts/:id
// Soft delete: kayıt fiziksel olarak silinmez.
func DeleteAircraftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var aircraft models.Aircraft
		if err := database.DB.Where("is_deleted = ?", false).First(&aircraft, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Uçak modeli bulunamadı")
		}

		if err := database.DB.Model(&aircraft).Update("is_deleted", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uçak modeli silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "aircraft",
			EntityID:      aircraft.ID,
			Action:        models.AuditActionDelete,
			Description:   fmt.Sprintf("Uçak modeli silindi: %s", aircraft.Name),
			Before:        aircraft,
			After:         nil,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
