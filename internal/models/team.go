package models

import "time"

type TeamRole string

const (
	TeamRoleProduction TeamRole = "production" // üretim takımı
	TeamRoleAssembly   TeamRole = "assembly"   // montaj takımı
)

// Team: Üretim veya montaj takımı.
// Montaj yetkisi isim eşleştirmesiyle değil Role alanıyla belirlenir.
type Team struct {
	ID                    uint     `gorm:"primaryKey"`
	Name                  string   `gorm:"size:50;not null;unique"`
	Role                  TeamRole `gorm:"size:20;not null;default:'production'"`
	ResponsiblePartTypeID *uint    `gorm:"index"` // montaj takımı için nil
	ResponsiblePartType   *PartType
	IsDeleted             bool `gorm:"not null;default:false;index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CanProduce: Takım verilen parça tipini üretebilir mi?
func (t *Team) CanProduce(partTypeID uint) bool {
	return t.ResponsiblePartTypeID != nil && *t.ResponsiblePartTypeID == partTypeID
}
