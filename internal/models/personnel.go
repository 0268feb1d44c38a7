package models

import "time"

// Personnel: Takıma bağlı personel hesabı
type Personnel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	TeamID       uint   `gorm:"index;not null"`
	Team         Team
	IsDeleted    bool `gorm:"not null;default:false;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
