package production

import "fmt"

// İş kuralı hataları tipli döner; handler'lar bunları HTTP statülerine
// çevirir. Beklenmeyen store hataları olduğu gibi yukarı taşınır.

type NotFoundError struct {
	Entity string // "aircraft", "part_type", "part", "part_stock"
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s bulunamadı (ID: %d)", e.Entity, e.ID)
}

type UnauthorizedError struct {
	TeamName string
	Reason   string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s takımı için yetki hatası: %s", e.TeamName, e.Reason)
}

type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Shortage: Eksik kalan tek bir parça gereksinimi
type Shortage struct {
	PartTypeID   uint   `json:"part_type_id"`
	PartTypeName string `json:"part_type"`
	AircraftName string `json:"aircraft"`
	Required     int    `json:"required"`
	Available    int    `json:"available"`
	Missing      int    `json:"missing"`
}

// InsufficientStockError: Montaj için stok yetersiz; Missing tüm
// gereksinimler kontrol edildikten sonraki eksiksiz listedir.
type InsufficientStockError struct {
	Missing []Shortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stokta yeterli parça bulunmuyor (%d eksik kalem)", len(e.Missing))
}

// ConflictError: Eşzamanlı tüketim yarışı kaybedildi veya sayaç
// quantity >= 0 invariantı ihlal edilecekti; transaction geri alındı.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
