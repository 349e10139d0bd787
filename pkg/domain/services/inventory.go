package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// StockIndex holds the stock of each material summed over warehouses and batches
type StockIndex map[entities.MaterialCode]entities.StockLevel

// AggregateInventory sums available and on-hand quantities per material and
// keeps the age of the oldest batch. The unit price is the first non-zero
// price seen for the material.
func AggregateInventory(records []entities.InventoryRecord, today entities.Date) StockIndex {
	index := make(StockIndex)
	for _, record := range records {
		level, ok := index[record.MaterialCode]
		if !ok {
			level = entities.StockLevel{MaterialCode: record.MaterialCode}
		}
		level.AvailableStock = level.AvailableStock.Add(record.AvailableQty)
		level.CurrentStock = level.CurrentStock.Add(record.BaseQty)
		if days := record.StorageDays(today); days > level.StorageDays {
			level.StorageDays = days
		}
		if level.UnitPrice.IsZero() && !record.UnitPrice.IsZero() {
			level.UnitPrice = record.UnitPrice
		}
		level.Batches++
		index[record.MaterialCode] = level
	}
	return index
}

// Get returns the stock of a material; a material without stock lines has zero stock
func (s StockIndex) Get(code entities.MaterialCode) entities.StockLevel {
	if level, ok := s[code]; ok {
		return level
	}
	return entities.StockLevel{MaterialCode: code}
}

// Covers reports whether the available stock of a material meets the required quantity
func (s StockIndex) Covers(code entities.MaterialCode, required decimal.Decimal) bool {
	return s.Get(code).AvailableStock.GreaterThanOrEqual(required)
}
