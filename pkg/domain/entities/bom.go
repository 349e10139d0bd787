package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultAltPriority ranks substitutes that carry no priority last
const DefaultAltPriority = 999

// BOMEdge represents one row of a bill-of-materials expansion
type BOMEdge struct {
	MaterialCode MaterialCode    `json:"material_code"`
	MaterialName string          `json:"material_name"`
	ParentCode   MaterialCode    `json:"parent_material_code"` // empty = child of the root product
	BOMLevel     int             `json:"bom_level"`
	AltPart      string          `json:"alt_part"`
	Version      string          `json:"bom_version"`
	Quantity     decimal.Decimal `json:"quantity"` // usage per parent; zero when not recorded
	AltGroupNo   string          `json:"alt_group_no"`
	AltPriority  int             `json:"alt_priority"`
}

// NewBOMEdge creates a validated BOMEdge
func NewBOMEdge(code MaterialCode, name string, parent MaterialCode, level int, altPart string) (*BOMEdge, error) {
	if code == "" {
		return nil, fmt.Errorf("material code cannot be empty")
	}
	if level < 0 {
		return nil, fmt.Errorf("bom level cannot be negative, got %d", level)
	}

	return &BOMEdge{
		MaterialCode: code,
		MaterialName: name,
		ParentCode:   parent,
		BOMLevel:     level,
		AltPart:      altPart,
		AltPriority:  DefaultAltPriority,
	}, nil
}

// IsAlternate reports whether the edge is a substitute part ("替代", "1", ...)
func (e BOMEdge) IsAlternate() bool {
	return e.AltPart != "" && e.AltPart != "0"
}

// Usage is the quantity of the child per parent, one when not recorded
func (e BOMEdge) Usage() decimal.Decimal {
	if !e.Quantity.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return e.Quantity
}
