package database

import (
	"log"

	"uretim-backend/internal/config"
	"uretim-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tüm model tablolarını oluşturur/günceller.
// Testler aynı şemayı sqlite üzerinde kurmak için de kullanır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Aircraft{},
		&models.PartType{},
		&models.Team{},
		&models.Personnel{},
		&models.AircraftPartRequirement{},
		&models.Part{},
		&models.PartStock{},
		&models.ProducedAircraft{},
		&models.AircraftPart{},
		&models.AuditLog{},
	)
}
