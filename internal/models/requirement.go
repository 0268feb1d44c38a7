package models

import "time"

// AircraftPartRequirement: Uçak modelinin montajı için gereken parça adedi
type AircraftPartRequirement struct {
	ID               uint `gorm:"primaryKey"`
	AircraftID       uint `gorm:"not null;uniqueIndex:idx_requirement_aircraft_part"`
	Aircraft         Aircraft
	PartTypeID       uint `gorm:"not null;uniqueIndex:idx_requirement_aircraft_part"`
	PartType         PartType
	RequiredQuantity int `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
