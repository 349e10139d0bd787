package repositories

import (
	"context"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// BOMRepository provides access to Bill of Materials data
type BOMRepository interface {
	// LoadBOMByProduct returns the edges of the product's latest BOM version.
	LoadBOMByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.BOMEdge, error)
}
