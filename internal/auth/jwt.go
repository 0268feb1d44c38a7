package auth

import (
	"time"

	"uretim-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTCustomClaims struct {
	PersonnelID uint            `json:"personnel_id"`
	Email       string          `json:"email"`
	TeamID      uint            `json:"team_id"`
	TeamRole    models.TeamRole `json:"team_role"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, p *models.Personnel) (string, error) {
	claims := &JWTCustomClaims{
		PersonnelID: p.ID,
		Email:       p.Email,
		TeamID:      p.TeamID,
		TeamRole:    p.Team.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 gün
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
