package models

import "time"

// PartStock: (parça tipi, uçak) başına stok sayacı.
// Quantity her zaman status=stock ve is_deleted=false olan Part satır
// sayısına eşit tutulur; sayaç yalnızca parça yaşam döngüsüyle değişir.
type PartStock struct {
	ID         uint `gorm:"primaryKey"`
	PartTypeID uint `gorm:"not null;uniqueIndex:idx_part_stock_type_aircraft"`
	PartType   PartType
	AircraftID uint `gorm:"not null;uniqueIndex:idx_part_stock_type_aircraft"`
	Aircraft   Aircraft
	Quantity   int  `gorm:"not null;default:0"` // hiçbir zaman negatif olmaz
	IsDeleted  bool `gorm:"not null;default:false;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
