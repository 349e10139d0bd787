package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaterialCode represents a unique material identifier
type MaterialCode string

// DefaultLeadTimeDays is used whenever a material carries no usable lead time
const DefaultLeadTimeDays = 7

// Raw material attribute values as recorded in the material master
const (
	AttrPurchased  = "外购"
	AttrOutsourced = "委外"
)

// MaterialType classifies how a material is sourced
type MaterialType int

const (
	SelfMade MaterialType = iota
	Purchased
	Outsourced
)

// String method for MaterialType enum
func (m MaterialType) String() string {
	switch m {
	case SelfMade:
		return "self_made"
	case Purchased:
		return "purchased"
	case Outsourced:
		return "outsourced"
	default:
		return "unknown"
	}
}

// IsExternal reports whether the material is sourced outside the plant
func (m MaterialType) IsExternal() bool {
	return m == Purchased || m == Outsourced
}

// MarshalText implements encoding.TextMarshaler
func (m MaterialType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *MaterialType) UnmarshalText(data []byte) error {
	switch string(data) {
	case "self_made", "":
		*m = SelfMade
	case "purchased":
		*m = Purchased
	case "outsourced":
		*m = Outsourced
	default:
		return fmt.Errorf("unknown material type %q", data)
	}
	return nil
}

// ClassifyMaterial maps the raw master-data attribute to a MaterialType
func ClassifyMaterial(attr string) MaterialType {
	switch attr {
	case AttrPurchased:
		return Purchased
	case AttrOutsourced:
		return Outsourced
	default:
		return SelfMade
	}
}

// MaterialRecord is the master data of one material
type MaterialRecord struct {
	Code                  MaterialCode    `json:"material_code"`
	Name                  string          `json:"material_name"`
	Attr                  string          `json:"materialattr"`
	PurchaseFixedLeadTime decimal.Decimal `json:"purchase_fixedleadtime"`
	ProductFixedLeadTime  decimal.Decimal `json:"product_fixedleadtime"`
	Unit                  string          `json:"baseunit_name"`
	MinOrderQty           decimal.Decimal `json:"purchase_huid_minlotsize"`
}

// Type returns the sourcing classification of the material
func (m MaterialRecord) Type() MaterialType {
	return ClassifyMaterial(m.Attr)
}

// LeadTime returns the lead time in days for the material's sourcing type.
// Values that are not strictly positive fall back to defaultDays.
func (m MaterialRecord) LeadTime(defaultDays int) decimal.Decimal {
	lt := m.ProductFixedLeadTime
	if m.Type().IsExternal() {
		lt = m.PurchaseFixedLeadTime
	}
	if !lt.IsPositive() {
		return decimal.NewFromInt(int64(defaultDays))
	}
	return lt
}

// LeadTimeDays rounds a lead time up to whole calendar days
func LeadTimeDays(leadTime decimal.Decimal) int {
	return int(leadTime.Ceil().IntPart())
}
