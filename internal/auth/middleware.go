package auth

import (
	"fmt"
	"strings"

	"uretim-backend/internal/config"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxPersonnelIDKey = "personnel_id"
	CtxTeamIDKey      = "team_id"
	CtxTeamRoleKey    = "team_role"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		tokenStr := parts[1]

		token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("geçersiz imzalama yöntemi")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Token çözümlenemedi")
		}

		c.Locals(CtxPersonnelIDKey, claims.PersonnelID)
		c.Locals(CtxTeamIDKey, claims.TeamID)
		c.Locals(CtxTeamRoleKey, claims.TeamRole)

		return c.Next()
	}
}

// RequireTeamRole: Route seviyesinde hızlı takım rolü kontrolü.
// Asıl yetki kararı production servisinde verilir, bu sadece erken eleme.
func RequireTeamRole(allowedRoles ...models.TeamRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxTeamRoleKey)
		role, ok := roleVal.(models.TeamRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Takım rolü alınamadı")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için takımınızın yetkisi yok")
	}
}
