package auth

import (
	"strings"

	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterPersonnelRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TeamID   uint   `json:"team_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
// Yeni personel hesabı oluşturur ve bir takıma bağlar.
func RegisterPersonnelHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterPersonnelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" || body.TeamID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email, şifre ve team_id zorunlu")
		}

		// Takım kontrolü
		var team models.Team
		if err := database.DB.Where("is_deleted = ?", false).First(&team, "id = ?", body.TeamID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Takım bulunamadı")
		}

		// Email kontrolü
		var exist models.Personnel
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		p := models.Personnel{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			TeamID:       team.ID,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        p.ID,
			"email":     p.Email,
			"team":      team.Name,
			"team_role": team.Role,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var p models.Personnel
		if err := database.DB.Preload("Team").
			Where("email = ? AND is_deleted = ?", body.Email, false).
			First(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, &p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"personnel": fiber.Map{
				"id":        p.ID,
				"name":      p.Name,
				"email":     p.Email,
				"team_id":   p.TeamID,
				"team":      p.Team.Name,
				"team_role": p.Team.Role,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnelIDVal := c.Locals(CtxPersonnelIDKey)

		var p models.Personnel
		if personnelID, ok := personnelIDVal.(uint); ok {
			if err := database.DB.Preload("Team").First(&p, personnelID).Error; err == nil {
				return c.JSON(fiber.Map{
					"personnel_id": p.ID,
					"name":         p.Name,
					"email":        p.Email,
					"team": fiber.Map{
						"id":   p.Team.ID,
						"name": p.Team.Name,
						"role": p.Team.Role,
					},
				})
			}
		}

		// Fallback: Veritabanından çekilemezse locals'dan döndür
		return c.JSON(fiber.Map{
			"personnel_id": personnelIDVal,
			"team_id":      c.Locals(CtxTeamIDKey),
			"team_role":    c.Locals(CtxTeamRoleKey),
		})
	}
}

// GET /api/auth/teammates
// Giriş yapmış personelin aynı takımdaki diğer personellerini listeler.
func TeammatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnelID, ok := c.Locals(CtxPersonnelIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Personel bilgisi alınamadı")
		}
		teamID, ok := c.Locals(CtxTeamIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Takım bilgisi alınamadı")
		}

		var mates []models.Personnel
		if err := database.DB.
			Where("team_id = ? AND id <> ? AND is_deleted = ?", teamID, personnelID, false).
			Order("name asc").
			Find(&mates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takım arkadaşları listelenemedi")
		}

		res := make([]fiber.Map, 0, len(mates))
		for _, m := range mates {
			res = append(res, fiber.Map{
				"id":    m.ID,
				"name":  m.Name,
				"email": m.Email,
			})
		}
		return c.JSON(res)
	}
}
