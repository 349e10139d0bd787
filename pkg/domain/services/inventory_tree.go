package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// InventoryTreeInput is everything one inventory tree build needs.
// A nil Substitutes skips substitutes; a nil Stock leaves every stock status unknown.
type InventoryTreeInput struct {
	ProductCode entities.MaterialCode
	ProductName string
	Tree        *BOMTree
	Substitutes *SubstituteIndex
	Materials   MaterialIndex
	Stock       StockIndex
}

// InventoryTreeBuilder expands a product's BOM depth-first and attaches
// stock levels and substitutes to every node.
type InventoryTreeBuilder struct {
	NodeLimit int
}

// NewInventoryTreeBuilder creates a builder with the default node limit
func NewInventoryTreeBuilder() *InventoryTreeBuilder {
	return &InventoryTreeBuilder{NodeLimit: DefaultNodeLimit}
}

type inventoryTreeWalk struct {
	in    InventoryTreeInput
	limit int
	tree  *entities.InventoryTree
}

// Build returns the tree of one product. A material already on the current
// path is not expanded again; shared parts under different parents are.
func (b *InventoryTreeBuilder) Build(in InventoryTreeInput) *entities.InventoryTree {
	limit := b.NodeLimit
	if limit <= 0 {
		limit = DefaultNodeLimit
	}
	if in.Materials == nil {
		in.Materials = MaterialIndex{}
	}
	if in.Tree == nil {
		in.Tree = BuildBOMTree(in.ProductCode, nil)
	}

	name := in.ProductName
	if name == "" {
		name = in.Materials.Get(in.ProductCode).Name
	}
	w := &inventoryTreeWalk{
		in:    in,
		limit: limit,
		tree: &entities.InventoryTree{
			ProductCode: in.ProductCode,
			ProductName: name,
		},
	}

	one := decimal.NewFromInt(1)
	root := w.node(in.ProductCode, name, 0, one)
	w.tree.Root = root
	w.expand(root, one, map[entities.MaterialCode]bool{in.ProductCode: true})
	return w.tree
}

// expand attaches the children of node. demand is the node's cumulative
// quantity per product; path holds the codes from the root down to node.
func (w *inventoryTreeWalk) expand(node *entities.InventoryNode, demand decimal.Decimal, path map[entities.MaterialCode]bool) {
	for _, edge := range w.in.Tree.Children(node.Code) {
		if path[edge.MaterialCode] {
			continue
		}
		if w.tree.Statistics.TotalMaterials >= w.limit {
			w.tree.Truncated = true
			return
		}

		child := w.node(edge.MaterialCode, edge.MaterialName, node.Level+1, edge.Usage())
		if w.in.Substitutes != nil {
			child.Substitutes = w.substitutes(node.Code, child, demand)
		}
		node.Children = append(node.Children, child)

		childPath := make(map[entities.MaterialCode]bool, len(path)+1)
		for code := range path {
			childPath[code] = true
		}
		childPath[edge.MaterialCode] = true
		w.expand(child, demand.Mul(child.Quantity), childPath)
	}
}

func (w *inventoryTreeWalk) node(code entities.MaterialCode, fallbackName string, level int, qty decimal.Decimal) *entities.InventoryNode {
	material := w.in.Materials.Get(code)
	node := &entities.InventoryNode{
		Code:         code,
		Name:         firstNonEmpty(material.Name, fallbackName, string(code)),
		Level:        level,
		Quantity:     qty,
		Unit:         firstNonEmpty(material.Unit, entities.DefaultUnit),
		MaterialType: material.Type(),
		Children:     []*entities.InventoryNode{},
		Substitutes:  []entities.Substitute{},
	}
	if material.MinOrderQty.IsPositive() {
		moq := material.MinOrderQty
		node.MinOrderQty = &moq
	}
	if w.in.Stock != nil {
		level := w.in.Stock.Get(code)
		node.CurrentStock = level.CurrentStock
		node.AvailableStock = level.AvailableStock
		node.StorageDays = level.StorageDays
		node.UnitPrice = level.UnitPrice
		node.StockStatus = level.Status()
	}
	w.tree.Statistics.Add(node)
	return node
}

func (w *inventoryTreeWalk) substitutes(parent entities.MaterialCode, primary *entities.InventoryNode, demand decimal.Decimal) []entities.Substitute {
	edges := w.in.Substitutes.For(parent, primary.Code)
	if len(edges) == 0 {
		return []entities.Substitute{}
	}

	var recommended entities.MaterialCode
	if w.in.Stock != nil {
		if best, ok := SelectSubstitute(edges, demand, w.in.Stock); ok {
			recommended = best.MaterialCode
		}
	}

	subs := make([]entities.Substitute, 0, len(edges))
	for _, edge := range edges {
		material := w.in.Materials.Get(edge.MaterialCode)
		sub := entities.Substitute{
			Code:        edge.MaterialCode,
			Name:        firstNonEmpty(material.Name, edge.MaterialName, string(edge.MaterialCode)),
			Quantity:    edge.Usage(),
			Priority:    edge.AltPriority,
			Ratio:       edge.Usage().DivRound(primary.Quantity, 4),
			Recommended: edge.MaterialCode == recommended,
		}
		if w.in.Stock != nil {
			level := w.in.Stock.Get(edge.MaterialCode)
			sub.CurrentStock = level.CurrentStock
			sub.AvailableStock = level.AvailableStock
			sub.StockStatus = level.Status()
		}
		subs = append(subs, sub)
	}
	return subs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
