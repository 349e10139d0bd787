package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Stock age thresholds in days
const (
	StockWarningDays  = 60
	StockStagnantDays = 90
)

// batchDateLayout is the inbound date prefix of a batch number, e.g. 20250301-A7
const batchDateLayout = "20060102"

// InventoryRecord is one warehouse/batch stock line of a material
type InventoryRecord struct {
	MaterialCode MaterialCode    `json:"material_code"`
	Warehouse    string          `json:"warehouse"`
	BatchNo      string          `json:"batch_no"`
	AvailableQty decimal.Decimal `json:"available_base_qty"`
	BaseQty      decimal.Decimal `json:"base_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// StorageDays derives the stock age from the YYYYMMDD prefix of the batch
// number. Batch numbers without a date prefix, or dated after today, are age 0.
func (r InventoryRecord) StorageDays(today Date) int {
	if len(r.BatchNo) < len(batchDateLayout) {
		return 0
	}
	inbound, err := time.Parse(batchDateLayout, r.BatchNo[:len(batchDateLayout)])
	if err != nil {
		return 0
	}
	days := DateOf(inbound).DaysUntil(today)
	if days < 0 {
		return 0
	}
	return days
}

// StockStatus classifies the stock of a material by availability and age
type StockStatus int

const (
	StockUnknown StockStatus = iota
	StockSufficient
	StockWarning
	StockStagnant
	StockInsufficient
)

// String method for StockStatus enum
func (s StockStatus) String() string {
	switch s {
	case StockSufficient:
		return "sufficient"
	case StockWarning:
		return "warning"
	case StockStagnant:
		return "stagnant"
	case StockInsufficient:
		return "insufficient"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s StockStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *StockStatus) UnmarshalText(data []byte) error {
	switch string(data) {
	case "unknown", "":
		*s = StockUnknown
	case "sufficient":
		*s = StockSufficient
	case "warning":
		*s = StockWarning
	case "stagnant":
		*s = StockStagnant
	case "insufficient":
		*s = StockInsufficient
	default:
		return fmt.Errorf("unknown stock status %q", data)
	}
	return nil
}

// ClassifyStock applies the thresholds: nothing available is insufficient
// regardless of age, then 90+ days stagnant, 60+ days warning.
func ClassifyStock(storageDays int, available decimal.Decimal) StockStatus {
	switch {
	case !available.IsPositive():
		return StockInsufficient
	case storageDays >= StockStagnantDays:
		return StockStagnant
	case storageDays >= StockWarningDays:
		return StockWarning
	default:
		return StockSufficient
	}
}

// StockLevel is the stock of one material summed over warehouses and batches
type StockLevel struct {
	MaterialCode   MaterialCode    `json:"materialCode"`
	CurrentStock   decimal.Decimal `json:"currentStock"`
	AvailableStock decimal.Decimal `json:"availableStock"`
	StorageDays    int             `json:"storageDays"` // age of the oldest batch
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Batches        int             `json:"batches"`
}

// Status classifies the aggregated stock
func (l StockLevel) Status() StockStatus {
	return ClassifyStock(l.StorageDays, l.AvailableStock)
}

// Value is current stock at unit price
func (l StockLevel) Value() decimal.Decimal {
	return l.CurrentStock.Mul(l.UnitPrice)
}
