package catalog

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// POST /api/requirements/import-excel
// XLSX dosyasından toplu gereksinim yükler. Beklenen kolonlar:
// uçak adı | parça tipi adı | gerekli adet
// Var olan (aircraft, part_type) çiftinin adedi güncellenir.
func ImportRequirementsExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		personnel, err := currentPersonnel(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı? ("UÇAK", "AIRCRAFT" gibi kelimeler varsa)
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "UÇAK") || strings.Contains(firstCell, "AIRCRAFT") {
				startIndex = 1
				log.Println("İlk satır başlık satırı olarak algılandı, atlanıyor")
			}
		}

		created := 0
		updated := 0
		skippedRows := make([]string, 0)

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) < 3 {
				continue
			}

			aircraftName := strings.TrimSpace(row[0])
			partTypeName := strings.TrimSpace(row[1])
			quantityStr := strings.TrimSpace(row[2])
			if aircraftName == "" || partTypeName == "" || quantityStr == "" {
				continue
			}

			quantity, err := strconv.Atoi(quantityStr)
			if err != nil || quantity < 0 {
				skippedRows = append(skippedRows, aircraftName+" / "+partTypeName)
				continue
			}

			var aircraft models.Aircraft
			if err := database.DB.Where("name = ? AND is_deleted = ?", aircraftName, false).First(&aircraft).Error; err != nil {
				skippedRows = append(skippedRows, aircraftName+" / "+partTypeName)
				continue
			}

			var partType models.PartType
			if err := database.DB.Where("name = ? AND is_deleted = ?", partTypeName, false).First(&partType).Error; err != nil {
				skippedRows = append(skippedRows, aircraftName+" / "+partTypeName)
				continue
			}

			var req models.AircraftPartRequirement
			err = database.DB.Where("aircraft_id = ? AND part_type_id = ?", aircraft.ID, partType.ID).First(&req).Error
			if err == nil {
				if err := database.DB.Model(&req).Update("required_quantity", quantity).Error; err != nil {
					skippedRows = append(skippedRows, aircraftName+" / "+partTypeName)
					continue
				}
				updated++
			} else {
				req = models.AircraftPartRequirement{
					AircraftID:       aircraft.ID,
					PartTypeID:       partType.ID,
					RequiredQuantity: quantity,
				}
				if err := database.DB.Create(&req).Error; err != nil {
					skippedRows = append(skippedRows, aircraftName+" / "+partTypeName)
					continue
				}
				created++
			}
		}

		_ = audit.WriteLog(audit.LogOptions{
			PersonnelID:   personnel.ID,
			PersonnelName: personnel.Name,
			TeamID:        &personnel.TeamID,
			EntityType:    "requirement",
			EntityID:      0,
			Action:        models.AuditActionUpdate,
			Description:   fmt.Sprintf("Excel gereksinim importu: %d yeni, %d güncelleme, %d atlanan", created, updated, len(skippedRows)),
			Before:        nil,
			After:         fiber.Map{"created": created, "updated": updated, "skipped": skippedRows},
		})

		return c.JSON(fiber.Map{
			"message":      "Gereksinim import tamamlandı",
			"created":      created,
			"updated":      updated,
			"skipped":      len(skippedRows),
			"skipped_rows": skippedRows,
		})
	}
}
