package catalog

import (
	"fmt"
	"strings"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TeamResponse struct {
	ID                      uint            `json:"id"`
	Name                    string          `json:"name"`
	Role                    models.TeamRole `json:"role"`
	ResponsiblePartTypeID   *uint           `json:"responsible_part_type_id"`
	ResponsiblePartTypeName string          `json:"responsible_part_type_name,omitempty"`
}

type CreateTeamRequest struct {
	Name                  string          `json:"name"`
	Role                  models.TeamRole `json:"role"` // varsayılan "production"
	ResponsiblePartTypeID *uint           `json:"responsible_part_type_id"`
}

type UpdateTeamRequest struct {
	Name                  *string          `json:"name"`
	Role                  *models.TeamRole `json:"role"`
	ResponsiblePartTypeID *uint            `json:"responsible_part_type_id"`
}

func toTeamResponse(t *models.Team) TeamResponse {
	res := TeamResponse{
		ID:                    t.ID,
		Name:                  t.Name,
		Role:                  t.Role,
		ResponsiblePartTypeID: t.ResponsiblePartTypeID,
	}
	if t.ResponsiblePartType != nil {
		res.ResponsiblePartTypeName = t.ResponsiblePartType.Name
	}
	return res
}

func validTeamRole(r models.TeamRole) bool {
	return r == models.TeamRoleProduction || r == models.TeamRoleAssembly
}

// POST /api/teams
// Üretim takımları tek bir parça tipinden sorumludur; montaj takımının
// sorumlu parça tipi olmaz.
func CreateTeamHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		var body CreateTeamRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Takım adı zorunlu")
		}

		if body.Role == "" {
			body.Role = models.TeamRoleProduction
		}
		if !validTeamRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz takım rolü")
		}

		if body.Role == models.TeamRoleAssembly && body.ResponsiblePartTypeID != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Montaj takımına sorumlu parça tipi atanamaz")
		}

		if body.ResponsiblePartTypeID != nil {
			var pt models.PartType
			if err := database.DB.Where("is_deleted = ?", false).First(&pt, "id = ?", *body.ResponsiblePartTypeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Sorumlu parça tipi bulunamadı")
			}
		}

		var exist models.Team
		if err := database.DB.Where("name = ? AND is_deleted = ?", body.Name, false).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu isimde bir takım zaten var")
		}

		team := models.Team{
			Name:                  body.Name,
			Role:                  body.Role,
			ResponsiblePartTypeID: body.ResponsiblePartTypeID,
		}
		if err := database.DB.Create(&team).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takım oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "team",
			EntityID:      team.ID,
			Action:        models.AuditActionCreate,
			Description:   fmt.Sprintf("Takım oluşturuldu: %s (%s)", team.Name, team.Role),
			Before:        nil,
			After:         team,
		})

		database.DB.Preload("ResponsiblePartType").First(&team, team.ID)
		return c.Status(fiber.StatusCreated).JSON(toTeamResponse(&team))
	}
}

// GET /api/teams
func ListTeamsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var teams []models.Team
		if err := database.DB.Preload("ResponsiblePartType").
			Where("is_deleted = ?", false).Order("name asc").Find(&teams).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takımlar listelenemedi")
		}

		res := make([]TeamResponse, 0, len(teams))
		for i := range teams {
			res = append(res, toTeamResponse(&teams[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/teams/:id
func GetTeamHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var team models.Team
		if err := database.DB.Preload("ResponsiblePartType").
			Where("is_deleted = ?", false).First(&team, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Takım bulunamadı")
		}

		return c.JSON(toTeamResponse(&team))
	}
}

// PUT /api/teams/:id
func UpdateTeamHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var team models.Team
		if err := database.DB.Where("is_deleted = ?", false).First(&team, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Takım bulunamadı")
		}
		before := team

		var body UpdateTeamRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Takım adı boş olamaz")
			}
			team.Name = name
		}

		if body.Role != nil {
			if !validTeamRole(*body.Role) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz takım rolü")
			}
			team.Role = *body.Role
		}

		if body.ResponsiblePartTypeID != nil {
			var pt models.PartType
			if err := database.DB.Where("is_deleted = ?", false).First(&pt, "id = ?", *body.ResponsiblePartTypeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Sorumlu parça tipi bulunamadı")
			}
			team.ResponsiblePartTypeID = body.ResponsiblePartTypeID
		}

		if team.Role == models.TeamRoleAssembly && team.ResponsiblePartTypeID != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Montaj takımına sorumlu parça tipi atanamaz")
		}

		if err := database.DB.Save(&team).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takım güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "team",
			EntityID:      team.ID,
			Action:        models.AuditActionUpdate,
			Description:   fmt.Sprintf("Takım güncellendi: %s", team.Name),
			Before:        before,
			After:         team,
		})

		database.DB.Preload("ResponsiblePartType").First(&team, team.ID)
		return c.JSON(toTeamResponse(&team))
	}
}

// DELETE /api/teams/:id
func DeleteTeamHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var team models.Team
		if err := database.DB.Where("is_deleted = ?", false).First(&team, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Takım bulunamadı")
		}

		if err := database.DB.Model(&team).Update("is_deleted", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takım silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "team",
			EntityID:      team.ID,
			Action:        models.AuditActionDelete,
			Description:   fmt.Sprintf("Takım silindi: %s", team.Name),
			Before:        team,
			After:         nil,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
