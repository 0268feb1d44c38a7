package production

import (
	"fmt"

	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PartStockResponse struct {
	ID           uint   `json:"id"`
	PartTypeID   uint   `json:"part_type_id"`
	PartTypeName string `json:"part_type_name"`
	AircraftID   uint   `json:"aircraft_id"`
	AircraftName string `json:"aircraft_name"`
	Quantity     int    `json:"quantity"`
}

// GET /api/part-stocks?aircraft_id=1
// Stok sayaçlarını listeler. Sayaçlar yalnızca parça yaşam döngüsüyle
// değişir, doğrudan güncelleme endpoint'i yoktur.
func ListPartStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.PartStock{}).
			Preload("PartType").
			Preload("Aircraft").
			Where("is_deleted = ?", false)

		aircraftIDStr := c.Query("aircraft_id")
		if aircraftIDStr != "" {
			var aid uint
			if _, err := fmt.Sscan(aircraftIDStr, &aid); err != nil || aid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "aircraft_id geçersiz")
			}
			dbq = dbq.Where("aircraft_id = ?", aid)
		}

		var stocks []models.PartStock
		if err := dbq.Order("aircraft_id asc, part_type_id asc").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		resp := make([]PartStockResponse, 0, len(stocks))
		for _, s := range stocks {
			resp = append(resp, PartStockResponse{
				ID:           s.ID,
				PartTypeID:   s.PartTypeID,
				PartTypeName: s.PartType.Name,
				AircraftID:   s.AircraftID,
				AircraftName: s.Aircraft.Name,
				Quantity:     s.Quantity,
			})
		}

		return c.JSON(resp)
	}
}
