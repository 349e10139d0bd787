package services

import (
	"sort"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// BOMTree is the primary-part adjacency of one product: parent code -> child edges
type BOMTree struct {
	ProductCode entities.MaterialCode
	children    map[entities.MaterialCode][]entities.BOMEdge
	edgeCount   int
	altCount    int
}

// BuildBOMTree groups the main-part edges of a product by parent code.
// Alternate parts are dropped; an empty parent code attaches the edge to the product.
// Order within a parent is the input order and duplicate edges are kept.
func BuildBOMTree(productCode entities.MaterialCode, edges []entities.BOMEdge) *BOMTree {
	tree := &BOMTree{
		ProductCode: productCode,
		children:    make(map[entities.MaterialCode][]entities.BOMEdge),
	}

	for _, edge := range edges {
		if edge.IsAlternate() {
			tree.altCount++
			continue
		}
		parent := edge.ParentCode
		if parent == "" {
			parent = productCode
		}
		tree.children[parent] = append(tree.children[parent], edge)
		tree.edgeCount++
	}

	return tree
}

// Children returns the child edges of a code in insertion order
func (t *BOMTree) Children(code entities.MaterialCode) []entities.BOMEdge {
	return t.children[code]
}

// HasChildren reports whether the code is an assembly in this tree
func (t *BOMTree) HasChildren(code entities.MaterialCode) bool {
	return len(t.children[code]) > 0
}

// EdgeCount is the number of main-part edges kept
func (t *BOMTree) EdgeCount() int {
	return t.edgeCount
}

// AlternateCount is the number of alternate edges filtered out
func (t *BOMTree) AlternateCount() int {
	return t.altCount
}

// Codes returns every code reachable from the product, product first, in BFS order.
// This is the key set for the bulk material / procurement lookups.
func (t *BOMTree) Codes() []entities.MaterialCode {
	visited := map[entities.MaterialCode]bool{t.ProductCode: true}
	codes := []entities.MaterialCode{t.ProductCode}

	queue := []entities.MaterialCode{t.ProductCode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range t.children[current] {
			if visited[edge.MaterialCode] {
				continue
			}
			visited[edge.MaterialCode] = true
			codes = append(codes, edge.MaterialCode)
			queue = append(queue, edge.MaterialCode)
		}
	}

	return codes
}

// SortedChildren returns the child edges of a code ordered by material code
func (t *BOMTree) SortedChildren(code entities.MaterialCode) []entities.BOMEdge {
	edges := append([]entities.BOMEdge(nil), t.children[code]...)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].MaterialCode < edges[j].MaterialCode
	})
	return edges
}

// SelectLatestVersion keeps only the edges of the lexicographically greatest BOM version.
// Unversioned edges are kept only when no edge carries a version.
func SelectLatestVersion(edges []entities.BOMEdge) []entities.BOMEdge {
	latest := ""
	for _, edge := range edges {
		if edge.Version > latest {
			latest = edge.Version
		}
	}
	if latest == "" {
		return edges
	}

	selected := make([]entities.BOMEdge, 0, len(edges))
	for _, edge := range edges {
		if edge.Version == latest {
			selected = append(selected, edge)
		}
	}
	return selected
}
