package repositories

import (
	"context"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// InventoryRepository provides access to warehouse stock lines
type InventoryRepository interface {
	// LoadInventoryByCode returns every warehouse/batch line of the given materials.
	LoadInventoryByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.InventoryRecord, error)
}

// StockRepository is what the inventory BOM tree depends on
type StockRepository interface {
	BOMRepository
	MaterialRepository
	InventoryRepository
}

// DataSource serves both the scheduler and the inventory tree
type DataSource interface {
	SupplyRepository
	InventoryRepository
}
