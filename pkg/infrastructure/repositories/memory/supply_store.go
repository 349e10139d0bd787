package memory

import (
	"context"
	"sync"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/domain/services"
)

// SupplyStore serves supply lookups from an in-memory snapshot
type SupplyStore struct {
	mu        sync.RWMutex
	bom       map[entities.MaterialCode][]entities.BOMEdge
	materials map[entities.MaterialCode][]entities.MaterialRecord
	requests  map[entities.MaterialCode][]entities.PurchaseRequest
	orders    map[entities.MaterialCode][]entities.PurchaseOrder
	mrp       map[entities.MaterialCode][]entities.MRPDemand
	inventory map[entities.MaterialCode][]entities.InventoryRecord
}

// Verify interface compliance
var _ repositories.DataSource = (*SupplyStore)(nil)

// NewSupplyStore indexes a snapshot by product and material code
func NewSupplyStore(snapshot *repositories.Snapshot) *SupplyStore {
	s := &SupplyStore{}
	s.Load(snapshot)
	return s
}

// Load replaces the store contents with the snapshot
func (s *SupplyStore) Load(snapshot *repositories.Snapshot) {
	if snapshot == nil {
		snapshot = repositories.NewSnapshot()
	}

	bom := make(map[entities.MaterialCode][]entities.BOMEdge, len(snapshot.BOM))
	for product, edges := range snapshot.BOM {
		bom[product] = services.SelectLatestVersion(edges)
	}

	mrp := make(map[entities.MaterialCode][]entities.MRPDemand, len(snapshot.MRP))
	for product, rows := range snapshot.MRP {
		mrp[product] = append([]entities.MRPDemand(nil), rows...)
	}

	materials := make(map[entities.MaterialCode][]entities.MaterialRecord, len(snapshot.Materials))
	for _, m := range snapshot.Materials {
		materials[m.Code] = append(materials[m.Code], m)
	}
	requests := make(map[entities.MaterialCode][]entities.PurchaseRequest)
	for _, pr := range snapshot.PurchaseRequests {
		requests[pr.MaterialNumber] = append(requests[pr.MaterialNumber], pr)
	}
	orders := make(map[entities.MaterialCode][]entities.PurchaseOrder)
	for _, po := range snapshot.PurchaseOrders {
		orders[po.MaterialNumber] = append(orders[po.MaterialNumber], po)
	}
	inventory := make(map[entities.MaterialCode][]entities.InventoryRecord)
	for _, line := range snapshot.Inventory {
		inventory[line.MaterialCode] = append(inventory[line.MaterialCode], line)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bom = bom
	s.materials = materials
	s.requests = requests
	s.orders = orders
	s.mrp = mrp
	s.inventory = inventory
}

// Products returns the product codes that have a BOM
func (s *SupplyStore) Products() []entities.MaterialCode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]entities.MaterialCode, 0, len(s.bom))
	for code := range s.bom {
		products = append(products, code)
	}
	return products
}

func (s *SupplyStore) LoadBOMByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.BOMEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.BOMEdge(nil), s.bom[productCode]...), nil
}

func (s *SupplyStore) LoadMaterialsByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.MaterialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(ctx, s.materials, codes)
}

func (s *SupplyStore) LoadPurchaseRequests(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(ctx, s.requests, codes)
}

func (s *SupplyStore) LoadPurchaseOrders(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(ctx, s.orders, codes)
}

func (s *SupplyStore) LoadInventoryByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(ctx, s.inventory, codes)
}

func (s *SupplyStore) GetMRPByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.MRPDemand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.MRPDemand(nil), s.mrp[productCode]...), nil
}

// lookup collects the rows of each distinct code in request order
func lookup[T any](ctx context.Context, index map[entities.MaterialCode][]T, codes []entities.MaterialCode) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []T
	for _, code := range repositories.UniqueCodes(codes) {
		out = append(out, index[code]...)
	}
	return out, nil
}
