package models

import "time"

// ProducedAircraft: Montajı tamamlanmış uçak. Yalnızca tüm parça
// gereksinimleri stoktan karşılandığında oluşturulur.
type ProducedAircraft struct {
	ID           uint   `gorm:"primaryKey"`
	SerialNumber string `gorm:"size:36;uniqueIndex;not null"`
	AircraftID   uint   `gorm:"index;not null"`
	Aircraft     Aircraft
	ProducedAt   time.Time `gorm:"index;not null"`
	IsDeleted    bool      `gorm:"not null;default:false;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Links []AircraftPart `gorm:"foreignKey:ProducedAircraftID;constraint:OnDelete:CASCADE"`
}

// AircraftPart: Üretilen uçak ile kullanılan parça arasındaki bağ.
// Her kullanılan parça için tek satır; bağ kurulduğu anda parça stoktaydı.
type AircraftPart struct {
	ID                 uint `gorm:"primaryKey"`
	ProducedAircraftID uint `gorm:"index;not null"`
	PartID             uint `gorm:"uniqueIndex;not null"`
	Part               Part
	CreatedAt          time.Time
}
