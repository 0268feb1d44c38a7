package models

import "time"

// PartType: Parça tipi (kanat, gövde, kuyruk, aviyonik)
type PartType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;not null;unique"`
	IsDeleted bool   `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
