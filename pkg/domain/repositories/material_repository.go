package repositories

import (
	"context"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// MaterialRepository provides access to material master data
type MaterialRepository interface {
	LoadMaterialsByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.MaterialRecord, error)
}
