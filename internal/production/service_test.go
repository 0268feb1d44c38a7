package production

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// newTestDB: Her test için izole in-memory sqlite açar. Tek bağlantı
// kullanılır ki transaction'lar Postgres'teki gibi sıralansın.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:uretim_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

type testCatalog struct {
	Aircraft     models.Aircraft
	WingType     models.PartType
	BodyType     models.PartType
	WingTeam     models.Team
	BodyTeam     models.Team
	AssemblyTeam models.Team
}

func seedCatalog(t *testing.T, db *gorm.DB) testCatalog {
	t.Helper()

	cat := testCatalog{
		Aircraft: models.Aircraft{Name: "TB2"},
		WingType: models.PartType{Name: "Kanat"},
		BodyType: models.PartType{Name: "Gövde"},
	}
	require.NoError(t, db.Create(&cat.Aircraft).Error)
	require.NoError(t, db.Create(&cat.WingType).Error)
	require.NoError(t, db.Create(&cat.BodyType).Error)

	cat.WingTeam = models.Team{Name: "Kanat Takımı", Role: models.TeamRoleProduction, ResponsiblePartTypeID: &cat.WingType.ID}
	cat.BodyTeam = models.Team{Name: "Gövde Takımı", Role: models.TeamRoleProduction, ResponsiblePartTypeID: &cat.BodyType.ID}
	cat.AssemblyTeam = models.Team{Name: "Montaj Takımı", Role: models.TeamRoleAssembly}
	require.NoError(t, db.Create(&cat.WingTeam).Error)
	require.NoError(t, db.Create(&cat.BodyTeam).Error)
	require.NoError(t, db.Create(&cat.AssemblyTeam).Error)

	return cat
}

// assertStockInvariant: Her (parça tipi, uçak) çifti için sayaç,
// stoktaki silinmemiş parça satırı sayısına eşit olmalı.
func assertStockInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()

	var stocks []models.PartStock
	require.NoError(t, db.Find(&stocks).Error)
	for _, s := range stocks {
		var cnt int64
		require.NoError(t, db.Model(&models.Part{}).
			Where("part_type_id = ? AND aircraft_id = ? AND status = ? AND is_deleted = ?",
				s.PartTypeID, s.AircraftID, models.PartStatusInStock, false).
			Count(&cnt).Error)
		assert.EqualValues(t, cnt, s.Quantity,
			"stok sayacı parça satır sayısından saptı (part_type=%d aircraft=%d)", s.PartTypeID, s.AircraftID)
		assert.GreaterOrEqual(t, s.Quantity, 0)
	}
}

func stockQuantity(t *testing.T, db *gorm.DB, partTypeID, aircraftID uint) int {
	t.Helper()

	var stock models.PartStock
	err := db.Where("part_type_id = ? AND aircraft_id = ?", partTypeID, aircraftID).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return stock.Quantity
}

func TestCreatePartsIncreasesStock(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      5,
	})
	require.NoError(t, err)
	require.Len(t, result.Parts, 5)
	assert.Equal(t, 5, result.Stock.Quantity)

	serials := make(map[string]bool)
	for _, p := range result.Parts {
		assert.Equal(t, models.PartStatusInStock, p.Status)
		assert.False(t, p.IsDeleted)
		assert.NotEmpty(t, p.SerialNumber)
		serials[p.SerialNumber] = true
	}
	assert.Len(t, serials, 5, "seri numaraları tekil olmalı")

	assertStockInvariant(t, db)
}

func TestCreatePartsUnauthorizedTeamHasNoSideEffects(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	// Kanat takımı gövde üretemez
	_, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.BodyType.ID,
		Count:      3,
	})

	var unauthorized *UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, cat.WingTeam.Name, unauthorized.TeamName)

	var partCount int64
	require.NoError(t, db.Model(&models.Part{}).Count(&partCount).Error)
	assert.Zero(t, partCount)

	var stockCount int64
	require.NoError(t, db.Model(&models.PartStock{}).Count(&stockCount).Error)
	assert.Zero(t, stockCount)
}

func TestCreatePartsValidation(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	_, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      0,
	})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	_, err = CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      1,
		Status:     "hurda",
	})
	require.ErrorAs(t, err, &invalid)

	_, err = CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: 9999,
		PartTypeID: cat.WingType.ID,
		Count:      1,
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "aircraft", notFound.Entity)
}

func TestCreatePartsRejectsDeletedAircraft(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	require.NoError(t, db.Model(&cat.Aircraft).Update("is_deleted", true).Error)

	_, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      1,
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRetirePartDecrementsStockOnce(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      5,
	})
	require.NoError(t, err)

	part, err := RetirePart(db, result.Parts[0].ID)
	require.NoError(t, err)
	assert.True(t, part.IsDeleted)
	assert.Equal(t, 4, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))
	assertStockInvariant(t, db)

	// İkinci silme: parça artık bulunamaz, stok değişmez
	_, err = RetirePart(db, result.Parts[0].ID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 4, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))
	assertStockInvariant(t, db)
}

func TestRetireUsedPartLeavesStockAlone(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      1,
	})
	require.NoError(t, err)

	_, err = UpdatePartStatus(db, result.Parts[0].ID, models.PartStatusUsed)
	require.NoError(t, err)
	assert.Equal(t, 0, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))

	// Kullanılmış parçanın silinmesi sayacı eksiye düşürmemeli
	_, err = RetirePart(db, result.Parts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))
	assertStockInvariant(t, db)
}

func TestUpdatePartStatusIsOneWay(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      1,
	})
	require.NoError(t, err)
	partID := result.Parts[0].ID

	// Aynı statü no-op
	part, err := UpdatePartStatus(db, partID, models.PartStatusInStock)
	require.NoError(t, err)
	assert.Equal(t, models.PartStatusInStock, part.Status)
	assert.Equal(t, 1, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))

	part, err = UpdatePartStatus(db, partID, models.PartStatusUsed)
	require.NoError(t, err)
	assert.Equal(t, models.PartStatusUsed, part.Status)
	assert.Equal(t, 0, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))

	// used -> stock yasak
	_, err = UpdatePartStatus(db, partID, models.PartStatusInStock)
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	_, err = UpdatePartStatus(db, partID, "hurda")
	require.ErrorAs(t, err, &invalid)
}

func TestUpdatePartStatusConflictOnCounterDrift(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      1,
	})
	require.NoError(t, err)

	// Sayaç dışarıdan bozulursa quantity >= 1 koruması Conflict üretmeli,
	// sayaç asla eksiye inmemeli
	require.NoError(t, db.Model(&models.PartStock{}).
		Where("part_type_id = ? AND aircraft_id = ?", cat.WingType.ID, cat.Aircraft.ID).
		Update("quantity", 0).Error)

	_, err = UpdatePartStatus(db, result.Parts[0].ID, models.PartStatusUsed)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))

	// Geri alındı: parça hâlâ stokta görünmeli
	var part models.Part
	require.NoError(t, db.First(&part, result.Parts[0].ID).Error)
	assert.Equal(t, models.PartStatusInStock, part.Status)
}

func TestCreatePartsChecksExistenceBeforeArguments(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	// Hem count geçersiz hem uçak yok: önce varlık kontrolü kazanmalı
	_, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: 9999,
		PartTypeID: cat.WingType.ID,
		Count:      0,
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "aircraft", notFound.Entity)

	// Hem count geçersiz hem takım yetkisiz: yetki kontrolü kazanmalı
	_, err = CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.BodyType.ID,
		Count:      0,
	})
	var unauthorized *UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
}

func TestRetirePartConcurrentSamePartDecrementsOnce(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      3,
	})
	require.NoError(t, err)
	partID := result.Parts[0].ID

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = RetirePart(db, partID)
		}(i)
	}
	wg.Wait()

	// Aynı parçayı silen iki çağrıdan yalnızca biri sayacı düşürebilir
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ConflictError
		var notFound *NotFoundError
		assert.True(t, errors.As(err, &conflict) || errors.As(err, &notFound),
			"kaybeden çağrı Conflict ya da NotFound dönmeli, geldi: %v", err)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 2, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))
	assertStockInvariant(t, db)
}

func TestUpdatePartStatusConcurrentSamePartDecrementsOnce(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      2,
	})
	require.NoError(t, err)
	partID := result.Parts[0].ID

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = UpdatePartStatus(db, partID, models.PartStatusUsed)
		}(i)
	}
	wg.Wait()

	// Aynı geçişi yarıştıran çağrılardan en fazla biri sayaç düşürür;
	// kaybeden Conflict alır ya da geçişi tamamlanmış bulur (no-op)
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.GreaterOrEqual(t, successes, 1)
	assert.Equal(t, 1, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))

	var part models.Part
	require.NoError(t, db.First(&part, partID).Error)
	assert.Equal(t, models.PartStatusUsed, part.Status)
	assertStockInvariant(t, db)
}

func TestCreatePartsConcurrentFirstStockRow(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	// Aynı (tip, uçak) çifti için ilk stok satırını iki üretim yarıştırır;
	// upsert sayesinde ikisi de başarılı olmalı ve tek satır oluşmalı
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = CreateParts(db, &cat.WingTeam, CreatePartsInput{
				AircraftID: cat.Aircraft.ID,
				PartTypeID: cat.WingType.ID,
				Count:      2,
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var rowCount int64
	require.NoError(t, db.Model(&models.PartStock{}).
		Where("part_type_id = ? AND aircraft_id = ?", cat.WingType.ID, cat.Aircraft.ID).
		Count(&rowCount).Error)
	assert.EqualValues(t, 1, rowCount)
	assert.Equal(t, 4, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))
	assertStockInvariant(t, db)
}

func TestCreatePartsWithUsedStatusSkipsCounter(t *testing.T) {
	db := newTestDB(t)
	cat := seedCatalog(t, db)

	result, err := CreateParts(db, &cat.WingTeam, CreatePartsInput{
		AircraftID: cat.Aircraft.ID,
		PartTypeID: cat.WingType.ID,
		Count:      2,
		Status:     models.PartStatusUsed,
	})
	require.NoError(t, err)
	require.Len(t, result.Parts, 2)

	// Kullanılmış olarak üretilen parça sayaca girmez
	assert.Equal(t, 0, stockQuantity(t, db, cat.WingType.ID, cat.Aircraft.ID))
	assertStockInvariant(t, db)
}
