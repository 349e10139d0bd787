package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

type substituteKey struct {
	parent  entities.MaterialCode
	primary entities.MaterialCode
}

// SubstituteIndex maps a primary part under a parent to its alternates.
// Edges are grouped by parent and alt_group_no; the non-alternate edge of a
// group is its primary and the rest are its substitutes.
type SubstituteIndex struct {
	groups map[substituteKey][]entities.BOMEdge
}

// NewSubstituteIndex groups the alternate edges of one product. Edges without
// an alt_group_no, and groups without a primary part, are ignored.
func NewSubstituteIndex(productCode entities.MaterialCode, edges []entities.BOMEdge) *SubstituteIndex {
	type groupKey struct {
		parent entities.MaterialCode
		group  string
	}
	primaries := make(map[groupKey]entities.MaterialCode)
	alternates := make(map[groupKey][]entities.BOMEdge)
	seen := make(map[groupKey]bool)
	var order []groupKey

	for _, edge := range edges {
		if edge.AltGroupNo == "" {
			continue
		}
		parent := edge.ParentCode
		if parent == "" {
			parent = productCode
		}
		key := groupKey{parent: parent, group: edge.AltGroupNo}
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
		if edge.IsAlternate() {
			alternates[key] = append(alternates[key], edge)
			continue
		}
		if _, ok := primaries[key]; !ok {
			primaries[key] = edge.MaterialCode
		}
	}

	index := &SubstituteIndex{groups: make(map[substituteKey][]entities.BOMEdge)}
	for _, key := range order {
		primary, ok := primaries[key]
		if !ok || len(alternates[key]) == 0 {
			continue
		}
		subs := SortByAltPriority(alternates[key])
		k := substituteKey{parent: key.parent, primary: primary}
		index.groups[k] = append(index.groups[k], subs...)
	}
	return index
}

// For returns the substitutes of a primary part under a parent, best priority first
func (s *SubstituteIndex) For(parent, primary entities.MaterialCode) []entities.BOMEdge {
	if s == nil {
		return nil
	}
	return s.groups[substituteKey{parent: parent, primary: primary}]
}

// Codes returns every substitute code once, for the bulk material and stock lookups
func (s *SubstituteIndex) Codes() []entities.MaterialCode {
	if s == nil {
		return nil
	}
	var codes []entities.MaterialCode
	seen := make(map[entities.MaterialCode]bool)
	for _, edges := range s.groups {
		for _, edge := range edges {
			if !seen[edge.MaterialCode] {
				seen[edge.MaterialCode] = true
				codes = append(codes, edge.MaterialCode)
			}
		}
	}
	return codes
}

// SortByAltPriority returns a copy ordered by alt_priority, lower first.
// Equal priorities keep their input order.
func SortByAltPriority(edges []entities.BOMEdge) []entities.BOMEdge {
	sorted := make([]entities.BOMEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AltPriority < sorted[j].AltPriority
	})
	return sorted
}

// SelectSubstitute picks the substitute to recommend: the best-priority one
// whose available stock covers its usage times the demand, else the best-priority one.
// ok is false when there are no substitutes.
func SelectSubstitute(subs []entities.BOMEdge, demand decimal.Decimal, stock StockIndex) (entities.BOMEdge, bool) {
	if len(subs) == 0 {
		return entities.BOMEdge{}, false
	}
	sorted := SortByAltPriority(subs)
	for _, sub := range sorted {
		if stock.Covers(sub.MaterialCode, sub.Usage().Mul(demand)) {
			return sub, true
		}
	}
	return sorted[0], true
}
