package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// MaterialIndex resolves master data by material code
type MaterialIndex map[entities.MaterialCode]entities.MaterialRecord

// NewMaterialIndex indexes records by code; a later record for the same code wins
func NewMaterialIndex(records []entities.MaterialRecord) MaterialIndex {
	index := make(MaterialIndex, len(records))
	for _, record := range records {
		index[record.Code] = record
	}
	return index
}

// Get returns the record for a code, or a bare self-made record when unknown
func (m MaterialIndex) Get(code entities.MaterialCode) entities.MaterialRecord {
	if record, ok := m[code]; ok {
		return record
	}
	return entities.MaterialRecord{Code: code}
}

// ProcurementIndex aggregates purchase requests and purchase orders per material
type ProcurementIndex struct {
	prCount map[entities.MaterialCode]int
	orders  map[entities.MaterialCode][]entities.PurchaseOrder
}

// NewProcurementIndex builds the PR counts and PO lists keyed by material number
func NewProcurementIndex(requests []entities.PurchaseRequest, orders []entities.PurchaseOrder) *ProcurementIndex {
	index := &ProcurementIndex{
		prCount: make(map[entities.MaterialCode]int),
		orders:  make(map[entities.MaterialCode][]entities.PurchaseOrder),
	}
	for _, pr := range requests {
		index.prCount[pr.MaterialNumber]++
	}
	for _, po := range orders {
		index.orders[po.MaterialNumber] = append(index.orders[po.MaterialNumber], po)
	}
	return index
}

// PRCount returns the number of purchase request lines for a material
func (p *ProcurementIndex) PRCount(code entities.MaterialCode) int {
	return p.prCount[code]
}

// HasPR reports whether at least one purchase request exists
func (p *ProcurementIndex) HasPR(code entities.MaterialCode) bool {
	return p.prCount[code] > 0
}

// HasPO reports whether at least one purchase order exists
func (p *ProcurementIndex) HasPO(code entities.MaterialCode) bool {
	return len(p.orders[code]) > 0
}

// Orders returns the purchase orders of a material
func (p *ProcurementIndex) Orders(code entities.MaterialCode) []entities.PurchaseOrder {
	return p.orders[code]
}

// LatestPODeliverDate returns the delivery date of the PO with the latest business date.
// The first order wins ties.
func (p *ProcurementIndex) LatestPODeliverDate(code entities.MaterialCode) (string, bool) {
	orders := p.orders[code]
	if len(orders) == 0 {
		return "", false
	}

	latest := orders[0]
	for _, po := range orders[1:] {
		if po.BizTime.After(latest.BizTime) {
			latest = po
		}
	}
	return latest.DeliverDate, true
}

// ShortageIndex holds MRP net demand per material
type ShortageIndex map[entities.MaterialCode]decimal.Decimal

// NewShortageIndex sums net demand rows per main material
func NewShortageIndex(demands []entities.MRPDemand) ShortageIndex {
	index := make(ShortageIndex, len(demands))
	for _, d := range demands {
		index[d.MainMaterial] = index[d.MainMaterial].Add(d.DemandQuantity)
	}
	return index
}

// NetDemand returns the net demand of a material; a missing entry is zero
func (s ShortageIndex) NetDemand(code entities.MaterialCode) decimal.Decimal {
	return s[code]
}

// Shortage reports whether the material is short and by how much
func (s ShortageIndex) Shortage(code entities.MaterialCode) (bool, decimal.Decimal) {
	demand := s[code]
	if demand.IsNegative() {
		return true, demand.Abs()
	}
	return false, decimal.Zero
}
