package production

import (
	"errors"
	"time"

	"uretim-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Montaj ve parça yaşam döngüsünün çekirdeği. Tüm mutasyonlar tek
// transaction içinde yapılır; PartStock.Quantity her operasyon sonunda
// stoktaki (status=stock, is_deleted=false) Part satır sayısına eşit kalır.

type CreatePartsInput struct {
	AircraftID uint
	PartTypeID uint
	Count      int
	Status     models.PartStatus
}

type CreatePartsResult struct {
	Parts []models.Part
	Stock models.PartStock
}

// CreateParts: Takımın sorumlu olduğu parça tipinden count adet parça
// üretir ve stok sayacını aynı transaction içinde artırır.
func CreateParts(db *gorm.DB, team *models.Team, in CreatePartsInput) (*CreatePartsResult, error) {
	if in.Status == "" {
		in.Status = models.PartStatusInStock
	}

	// Kontrol sırası: varlık -> yetki -> argümanlar
	var aircraft models.Aircraft
	if err := db.Where("is_deleted = ?", false).First(&aircraft, "id = ?", in.AircraftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "aircraft", ID: in.AircraftID}
		}
		return nil, err
	}

	var partType models.PartType
	if err := db.Where("is_deleted = ?", false).First(&partType, "id = ?", in.PartTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "part_type", ID: in.PartTypeID}
		}
		return nil, err
	}

	// Yetki kontrolü: takım yalnızca sorumlu olduğu parça tipini üretebilir
	if !team.CanProduce(partType.ID) {
		return nil, &UnauthorizedError{
			TeamName: team.Name,
			Reason:   partType.Name + " parçasını üretme yetkisi yok",
		}
	}

	if !models.ValidPartStatus(in.Status) {
		return nil, &InvalidArgumentError{Message: "Geçersiz status değeri"}
	}
	if in.Count < 1 {
		return nil, &InvalidArgumentError{Message: "count değeri en az 1 olmalıdır"}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	parts := make([]models.Part, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		part := models.Part{
			SerialNumber: uuid.NewString(),
			PartTypeID:   partType.ID,
			AircraftID:   aircraft.ID,
			TeamID:       team.ID,
			Status:       in.Status,
		}
		if err := tx.Create(&part).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		parts = append(parts, part)
	}

	// Stok satırını upsert ile garanti et: aynı (tip, uçak) çifti için ilk
	// eşzamanlı üretimlerde unique index yarışı tipli olmayan hataya dönmez
	stock := models.PartStock{PartTypeID: partType.ID, AircraftID: aircraft.ID, Quantity: 0}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("part_type_id = ? AND aircraft_id = ?", partType.ID, aircraft.ID).First(&stock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Sayaç yalnızca stokta olan parçalar için artar
	if in.Status == models.PartStatusInStock {
		if err := tx.Model(&models.PartStock{}).
			Where("id = ?", stock.ID).
			Update("quantity", gorm.Expr("quantity + ?", in.Count)).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := db.First(&stock, stock.ID).Error; err != nil {
		return nil, err
	}

	return &CreatePartsResult{Parts: parts, Stock: stock}, nil
}

// RetirePart: Parçayı soft-delete eder. Parça stoktaysa sayaç 1 azaltılır,
// sıfırın altına inilmez. Silinmiş parça tekrar bulunamaz, dolayısıyla
// ikinci çağrı stok üzerinde no-op'tur.
func RetirePart(db *gorm.DB, partID uint) (*models.Part, error) {
	var part models.Part
	if err := db.Preload("PartType").Preload("Aircraft").
		Where("is_deleted = ?", false).First(&part, "id = ?", partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "part", ID: partID}
		}
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Parça okunan durumu WHERE'e koyularak sahiplenilir: aynı parçayı
	// silen eşzamanlı ikinci çağrı 0 satır etkiler ve sayaç iki kez düşmez
	res := tx.Model(&models.Part{}).
		Where("id = ? AND status = ? AND is_deleted = ?", part.ID, part.Status, false).
		Update("is_deleted", true)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, &ConflictError{Message: "Parça eşzamanlı başka bir işlem tarafından değiştirildi, işlem geri alındı"}
	}

	if part.Status == models.PartStatusInStock {
		// Kullanılmış parça zaten sayaca dahil değil; sadece stoktakiler düşülür
		if err := tx.Model(&models.PartStock{}).
			Where("part_type_id = ? AND aircraft_id = ? AND quantity > 0", part.PartTypeID, part.AircraftID).
			Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	part.IsDeleted = true
	return &part, nil
}

// UpdatePartStatus: Parça durumunu günceller. Geçiş tek yönlüdür
// (stock -> used); stoktan düşen parça sayacı da 1 azaltır.
func UpdatePartStatus(db *gorm.DB, partID uint, status models.PartStatus) (*models.Part, error) {
	if !models.ValidPartStatus(status) {
		return nil, &InvalidArgumentError{Message: "Geçersiz status değeri"}
	}

	var part models.Part
	if err := db.Where("is_deleted = ?", false).First(&part, "id = ?", partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "part", ID: partID}
		}
		return nil, err
	}

	if part.Status == status {
		return &part, nil
	}

	if part.Status == models.PartStatusUsed && status == models.PartStatusInStock {
		return nil, &InvalidArgumentError{Message: "Kullanılmış parça tekrar stoka alınamaz"}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Parça satırı okunan durum garantisiyle güncellenir: aynı geçişi
	// yapan eşzamanlı ikinci çağrı 0 satır etkiler
	res := tx.Model(&models.Part{}).
		Where("id = ? AND status = ? AND is_deleted = ?", part.ID, part.Status, false).
		Update("status", status)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, &ConflictError{Message: "Parça eşzamanlı başka bir işlem tarafından değiştirildi, işlem geri alındı"}
	}

	// stock -> used: sayaç quantity >= 1 garantisiyle düşülür
	res = tx.Model(&models.PartStock{}).
		Where("part_type_id = ? AND aircraft_id = ? AND quantity >= 1", part.PartTypeID, part.AircraftID).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, &ConflictError{Message: "Stok sayacı parça kaydıyla uyumsuz, işlem geri alındı"}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	part.Status = status
	return &part, nil
}

// Assemble: İki fazlı kontrol-sonra-tüket montaj operasyonu.
//
// Önce tüm gereksinimler stok sayacı üzerinden kontrol edilir ve eksikler
// tek seferde raporlanır (kısa devre yok). Eksik yoksa parça satırları
// deterministik sırayla (id ASC) seçilir, korumalı UPDATE ile tüketilir ve
// sayaçlar quantity >= required şartıyla düşülür. Korumalı UPDATE'lerden
// herhangi biri beklenenden az satır etkilerse yarış kaybedilmiştir:
// transaction Conflict ile geri alınır, yarım montaj asla görünmez.
func Assemble(db *gorm.DB, team *models.Team, aircraftID uint) (*models.ProducedAircraft, error) {
	if team.Role != models.TeamRoleAssembly {
		return nil, &UnauthorizedError{TeamName: team.Name, Reason: "sadece montaj takımı uçak üretebilir"}
	}

	var aircraft models.Aircraft
	if err := db.Where("is_deleted = ?", false).First(&aircraft, "id = ?", aircraftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "aircraft", ID: aircraftID}
		}
		return nil, err
	}

	var requirements []models.AircraftPartRequirement
	if err := db.Preload("PartType").
		Where("aircraft_id = ?", aircraft.ID).
		Order("part_type_id asc").
		Find(&requirements).Error; err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Faz 1: Stok sayacı kontrolü. Eksiksiz rapor için tüm gereksinimler
	// gezilir, ilk eksikte durulmaz.
	missing := make([]Shortage, 0)
	for _, req := range requirements {
		if req.RequiredQuantity == 0 {
			continue
		}

		available := 0
		var stock models.PartStock
		err := tx.Where("part_type_id = ? AND aircraft_id = ?", req.PartTypeID, aircraft.ID).First(&stock).Error
		if err == nil {
			available = stock.Quantity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return nil, err
		}

		if available < req.RequiredQuantity {
			missing = append(missing, Shortage{
				PartTypeID:   req.PartTypeID,
				PartTypeName: req.PartType.Name,
				AircraftName: aircraft.Name,
				Required:     req.RequiredQuantity,
				Available:    available,
				Missing:      req.RequiredQuantity - available,
			})
		}
	}

	if len(missing) > 0 {
		tx.Rollback()
		return nil, &InsufficientStockError{Missing: missing}
	}

	// Faz 2: Parça satırları en eski üretilen önce olacak şekilde seçilir.
	// Sayaç cache olduğu için seçim sonucu ayrıca doğrulanır.
	partsToUse := make(map[uint][]uint, len(requirements))
	for _, req := range requirements {
		if req.RequiredQuantity == 0 {
			continue
		}

		var partIDs []uint
		if err := tx.Model(&models.Part{}).
			Where("part_type_id = ? AND aircraft_id = ? AND status = ? AND is_deleted = ?",
				req.PartTypeID, aircraft.ID, models.PartStatusInStock, false).
			Order("id asc").
			Limit(req.RequiredQuantity).
			Pluck("id", &partIDs).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		if len(partIDs) < req.RequiredQuantity {
			missing = append(missing, Shortage{
				PartTypeID:   req.PartTypeID,
				PartTypeName: req.PartType.Name,
				AircraftName: aircraft.Name,
				Required:     req.RequiredQuantity,
				Available:    len(partIDs),
				Missing:      req.RequiredQuantity - len(partIDs),
			})
			continue
		}

		partsToUse[req.PartTypeID] = partIDs
	}

	if len(missing) > 0 {
		tx.Rollback()
		return nil, &InsufficientStockError{Missing: missing}
	}

	produced := models.ProducedAircraft{
		SerialNumber: uuid.NewString(),
		AircraftID:   aircraft.ID,
		ProducedAt:   time.Now(),
	}
	if err := tx.Create(&produced).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, req := range requirements {
		partIDs, ok := partsToUse[req.PartTypeID]
		if !ok {
			continue
		}

		// Parçaları korumalı UPDATE ile sahiplen: başka bir montaj aynı
		// parçayı tüketmişse etkilenen satır sayısı eksik kalır.
		res := tx.Model(&models.Part{}).
			Where("id IN ? AND status = ? AND is_deleted = ?", partIDs, models.PartStatusInStock, false).
			Updates(map[string]interface{}{
				"status":     models.PartStatusUsed,
				"is_deleted": true,
			})
		if res.Error != nil {
			tx.Rollback()
			return nil, res.Error
		}
		if res.RowsAffected != int64(len(partIDs)) {
			tx.Rollback()
			return nil, &ConflictError{Message: "Parçalar eşzamanlı başka bir montaj tarafından tüketildi, işlem geri alındı"}
		}

		for _, partID := range partIDs {
			link := models.AircraftPart{ProducedAircraftID: produced.ID, PartID: partID}
			if err := tx.Create(&link).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		// Sayaç hiçbir koşulda sıfırın altına inmez
		res = tx.Model(&models.PartStock{}).
			Where("part_type_id = ? AND aircraft_id = ? AND quantity >= ?",
				req.PartTypeID, aircraft.ID, req.RequiredQuantity).
			Update("quantity", gorm.Expr("quantity - ?", req.RequiredQuantity))
		if res.Error != nil {
			tx.Rollback()
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return nil, &ConflictError{Message: "Stok sayacı eşzamanlı güncellendi, işlem geri alındı"}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := db.Preload("Aircraft").
		Preload("Links").
		Preload("Links.Part").
		Preload("Links.Part.PartType").
		First(&produced, produced.ID).Error; err != nil {
		return nil, err
	}

	return &produced, nil
}
