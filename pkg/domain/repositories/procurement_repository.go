package repositories

import (
	"context"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// ProcurementRepository provides access to purchase requests and purchase orders
type ProcurementRepository interface {
	LoadPurchaseRequests(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseRequest, error)
	LoadPurchaseOrders(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseOrder, error)
}

// MRPRepository provides access to MRP net demand
type MRPRepository interface {
	GetMRPByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.MRPDemand, error)
}

// SupplyRepository is the union of all lookups the scheduler depends on
type SupplyRepository interface {
	BOMRepository
	MaterialRepository
	ProcurementRepository
	MRPRepository
}
