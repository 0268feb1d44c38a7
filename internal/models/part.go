package models

import "time"

type PartStatus string

const (
	PartStatusInStock PartStatus = "stock" // stokta
	PartStatusUsed    PartStatus = "used"  // montajda kullanılmış
)

// ValidPartStatus: Gelen status değeri tanımlı mı?
func ValidPartStatus(s PartStatus) bool {
	return s == PartStatusInStock || s == PartStatusUsed
}

// Part: Tekil parça kaydı. Status yalnızca stock -> used yönünde değişir;
// kullanılmış veya silinmiş parça bir daha stoka dönmez.
type Part struct {
	ID           uint   `gorm:"primaryKey"`
	SerialNumber string `gorm:"size:36;uniqueIndex;not null"`
	PartTypeID   uint   `gorm:"index;not null"`
	PartType     PartType
	AircraftID   uint `gorm:"index;not null"`
	Aircraft     Aircraft
	TeamID       uint `gorm:"index;not null"` // üreten takım
	Team         Team
	Status       PartStatus `gorm:"size:10;not null;default:'stock';index"`
	IsDeleted    bool       `gorm:"not null;default:false;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
