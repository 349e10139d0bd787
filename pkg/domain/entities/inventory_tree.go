package entities

import "github.com/shopspring/decimal"

// DefaultUnit is shown when the material master carries no base unit
const DefaultUnit = "个"

// InventoryNode is one occurrence of a material in a product's inventory-aware BOM tree
type InventoryNode struct {
	Code           MaterialCode     `json:"code"`
	Name           string           `json:"name"`
	Level          int              `json:"level"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Unit           string           `json:"unit"`
	MaterialType   MaterialType     `json:"materialType"`
	CurrentStock   decimal.Decimal  `json:"currentStock"`
	AvailableStock decimal.Decimal  `json:"availableStock"`
	StockStatus    StockStatus      `json:"stockStatus"`
	StorageDays    int              `json:"storageDays"`
	UnitPrice      decimal.Decimal  `json:"unitPrice"`
	MinOrderQty    *decimal.Decimal `json:"moq,omitempty"`
	Children       []*InventoryNode `json:"children"`
	Substitutes    []Substitute     `json:"substitutes"`
}

// Value is the on-hand stock value of the node
func (n *InventoryNode) Value() decimal.Decimal {
	return n.CurrentStock.Mul(n.UnitPrice)
}

// Substitute is an alternate part that can replace a node under the same parent
type Substitute struct {
	Code           MaterialCode    `json:"code"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Priority       int             `json:"priority"`
	Ratio          decimal.Decimal `json:"ratio"` // substitute usage per unit of primary usage
	CurrentStock   decimal.Decimal `json:"currentStock"`
	AvailableStock decimal.Decimal `json:"availableStock"`
	StockStatus    StockStatus     `json:"stockStatus"`
	Recommended    bool            `json:"recommended"`
}

// InventoryTreeStatistics summarizes stock health over every node of a tree
type InventoryTreeStatistics struct {
	TotalMaterials      int             `json:"totalMaterials"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	StagnantCount       int             `json:"stagnantCount"`
	WarningCount        int             `json:"warningCount"`
	InsufficientCount   int             `json:"insufficientCount"`
}

// Add folds one node into the statistics
func (s *InventoryTreeStatistics) Add(n *InventoryNode) {
	s.TotalMaterials++
	s.TotalInventoryValue = s.TotalInventoryValue.Add(n.Value())
	switch n.StockStatus {
	case StockStagnant:
		s.StagnantCount++
	case StockWarning:
		s.WarningCount++
	case StockInsufficient:
		s.InsufficientCount++
	}
}

// InventoryTree is the inventory-aware BOM of one product
type InventoryTree struct {
	ProductCode MaterialCode            `json:"productCode"`
	ProductName string                  `json:"productName"`
	Root        *InventoryNode          `json:"root"`
	Statistics  InventoryTreeStatistics `json:"statistics"`
	Truncated   bool                    `json:"truncated"`
}
