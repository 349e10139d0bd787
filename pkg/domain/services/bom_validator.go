package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// BOMValidator reports structural problems in a product's BOM edge list.
// Its findings are diagnostics only; scheduling tolerates all of them.
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	ProductCode      entities.MaterialCode     `json:"productCode"`
	EdgeCount        int                       `json:"edgeCount"`
	AlternateCount   int                       `json:"alternateCount"`
	HasCycles        bool                      `json:"hasCycles"`
	CyclePaths       [][]entities.MaterialCode `json:"cyclePaths"`
	DuplicateEdges   []entities.BOMEdge        `json:"duplicateEdges"`
	SelfReferences   []entities.MaterialCode   `json:"selfReferences"`
	UnreachableCodes []entities.MaterialCode   `json:"unreachableCodes"`
	LevelMismatches  []entities.MaterialCode   `json:"levelMismatches"` // recorded bom_level differs from traversal depth
	Errors           []string                  `json:"errors"`
}

// IsClean reports whether no problem was found
func (r *ValidationResult) IsClean() bool {
	return len(r.Errors) == 0
}

// Validate inspects the main-part edges of one product
func (v *BOMValidator) Validate(productCode entities.MaterialCode, edges []entities.BOMEdge) *ValidationResult {
	tree := BuildBOMTree(productCode, edges)
	result := &ValidationResult{
		ProductCode:      productCode,
		EdgeCount:        tree.EdgeCount(),
		AlternateCount:   tree.AlternateCount(),
		CyclePaths:       make([][]entities.MaterialCode, 0),
		DuplicateEdges:   make([]entities.BOMEdge, 0),
		SelfReferences:   make([]entities.MaterialCode, 0),
		UnreachableCodes: make([]entities.MaterialCode, 0),
		LevelMismatches:  make([]entities.MaterialCode, 0),
		Errors:           make([]string, 0),
	}

	adjacency := v.buildAdjacencyMap(tree)

	result.CyclePaths = v.detectCycles(productCode, adjacency)
	result.HasCycles = len(result.CyclePaths) > 0
	result.DuplicateEdges = v.detectDuplicateEdges(productCode, edges)
	result.SelfReferences = v.detectSelfReferences(productCode, edges)
	result.UnreachableCodes = v.detectUnreachable(tree, adjacency)
	result.LevelMismatches = v.detectLevelMismatches(tree)

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	if len(result.DuplicateEdges) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Found %d duplicate BOM edges", len(result.DuplicateEdges)))
	}
	for _, code := range result.SelfReferences {
		result.Errors = append(result.Errors, fmt.Sprintf("Material %s lists itself as a component", code))
	}
	if len(result.UnreachableCodes) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%d parent codes are not reachable from %s: %v",
			len(result.UnreachableCodes), productCode, result.UnreachableCodes))
	}

	return result
}

// buildAdjacencyMap creates a map of parent -> distinct children
func (v *BOMValidator) buildAdjacencyMap(tree *BOMTree) map[entities.MaterialCode][]entities.MaterialCode {
	adjacency := make(map[entities.MaterialCode][]entities.MaterialCode)

	for parent, edges := range tree.children {
		seen := make(map[entities.MaterialCode]bool, len(edges))
		for _, edge := range edges {
			if seen[edge.MaterialCode] {
				continue
			}
			seen[edge.MaterialCode] = true
			adjacency[parent] = append(adjacency[parent], edge.MaterialCode)
		}
	}

	return adjacency
}

// detectCycles uses DFS to find cycles, starting from the product and then from
// any parent the product does not reach
func (v *BOMValidator) detectCycles(
	productCode entities.MaterialCode,
	adjacency map[entities.MaterialCode][]entities.MaterialCode,
) [][]entities.MaterialCode {
	visited := make(map[entities.MaterialCode]bool)
	onStack := make(map[entities.MaterialCode]bool)
	cycles := make([][]entities.MaterialCode, 0)

	starts := []entities.MaterialCode{productCode}
	for _, parent := range sortedKeys(adjacency) {
		if parent != productCode {
			starts = append(starts, parent)
		}
	}

	for _, start := range starts {
		if !visited[start] {
			v.dfsDetectCycle(start, adjacency, visited, onStack, nil, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycle performs depth-first search to detect cycles
func (v *BOMValidator) dfsDetectCycle(
	current entities.MaterialCode,
	adjacency map[entities.MaterialCode][]entities.MaterialCode,
	visited map[entities.MaterialCode]bool,
	onStack map[entities.MaterialCode]bool,
	path []entities.MaterialCode,
	cycles *[][]entities.MaterialCode,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if child == current {
			continue // reported as a self reference
		}
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, code := range path {
			if code == child {
				cycle := make([]entities.MaterialCode, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child) // close the cycle
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

// detectDuplicateEdges finds main-part edges repeated under the same parent
func (v *BOMValidator) detectDuplicateEdges(productCode entities.MaterialCode, edges []entities.BOMEdge) []entities.BOMEdge {
	seen := make(map[string]bool)
	duplicates := make([]entities.BOMEdge, 0)

	for _, edge := range edges {
		if edge.IsAlternate() {
			continue
		}
		parent := edge.ParentCode
		if parent == "" {
			parent = productCode
		}
		key := fmt.Sprintf("%s|%s", parent, edge.MaterialCode)
		if seen[key] {
			duplicates = append(duplicates, edge)
			continue
		}
		seen[key] = true
	}

	return duplicates
}

func (v *BOMValidator) detectSelfReferences(productCode entities.MaterialCode, edges []entities.BOMEdge) []entities.MaterialCode {
	refs := make([]entities.MaterialCode, 0)
	for _, edge := range edges {
		parent := edge.ParentCode
		if parent == "" {
			parent = productCode
		}
		if !edge.IsAlternate() && parent == edge.MaterialCode {
			refs = append(refs, edge.MaterialCode)
		}
	}
	return refs
}

// detectUnreachable lists parent codes that never appear under the product
func (v *BOMValidator) detectUnreachable(tree *BOMTree, adjacency map[entities.MaterialCode][]entities.MaterialCode) []entities.MaterialCode {
	reachable := make(map[entities.MaterialCode]bool)
	for _, code := range tree.Codes() {
		reachable[code] = true
	}

	unreachable := make([]entities.MaterialCode, 0)
	for _, parent := range sortedKeys(adjacency) {
		if !reachable[parent] {
			unreachable = append(unreachable, parent)
		}
	}
	return unreachable
}

// detectLevelMismatches compares recorded bom_level against BFS depth
func (v *BOMValidator) detectLevelMismatches(tree *BOMTree) []entities.MaterialCode {
	depth := map[entities.MaterialCode]int{tree.ProductCode: 0}
	mismatches := make([]entities.MaterialCode, 0)

	queue := []entities.MaterialCode{tree.ProductCode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range tree.Children(current) {
			if _, seen := depth[edge.MaterialCode]; seen {
				continue
			}
			depth[edge.MaterialCode] = depth[current] + 1
			if edge.BOMLevel != 0 && edge.BOMLevel != depth[edge.MaterialCode] {
				mismatches = append(mismatches, edge.MaterialCode)
			}
			queue = append(queue, edge.MaterialCode)
		}
	}

	return mismatches
}

func sortedKeys(m map[entities.MaterialCode][]entities.MaterialCode) []entities.MaterialCode {
	keys := make([]entities.MaterialCode, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
