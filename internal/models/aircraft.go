package models

import "time"

// Aircraft: Üretilebilen hava aracı modeli (ör: TB2, AKINCI)
type Aircraft struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;not null;unique"`
	IsDeleted bool   `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
