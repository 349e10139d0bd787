package dto

import (
	"time"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// InventoryTreeResult is the output of one inventory tree run over several products
type InventoryTreeResult struct {
	RunID        string                    `json:"runId"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
	Trees        []*entities.InventoryTree `json:"trees"`
	Missing      []entities.MaterialCode   `json:"missing"` // requested products with no BOM and no master data
	ProcessingMS int64                     `json:"processingTimeMs"`
}
