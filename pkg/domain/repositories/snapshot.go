package repositories

import "github.com/vsinha/cockpit/pkg/domain/entities"

// Snapshot is a complete offline copy of the supply data behind a set of products.
// BOM edges and MRP rows are grouped by the product they were expanded for.
type Snapshot struct {
	BOM              map[entities.MaterialCode][]entities.BOMEdge
	Materials        []entities.MaterialRecord
	PurchaseRequests []entities.PurchaseRequest
	PurchaseOrders   []entities.PurchaseOrder
	MRP              map[entities.MaterialCode][]entities.MRPDemand
	Inventory        []entities.InventoryRecord
}

// NewSnapshot returns an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		BOM: make(map[entities.MaterialCode][]entities.BOMEdge),
		MRP: make(map[entities.MaterialCode][]entities.MRPDemand),
	}
}

// Products returns the product codes that have a BOM
func (s *Snapshot) Products() []entities.MaterialCode {
	products := make([]entities.MaterialCode, 0, len(s.BOM))
	for code := range s.BOM {
		products = append(products, code)
	}
	return products
}
