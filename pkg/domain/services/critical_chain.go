package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// FindCriticalChains returns the topN root-to-leaf chains of a schedule tree,
// longest cumulative component lead time first. The product's own lead time
// is not counted: every chain ends at the production start.
func FindCriticalChains(root *entities.GanttBar, topN int) []entities.CriticalChain {
	if root == nil {
		return nil
	}

	var chains []entities.CriticalChain
	path := []*entities.GanttBar{root}
	collectChains(root, path, &chains)

	sort.SliceStable(chains, func(i, j int) bool {
		// Primary sort: cumulative lead time
		if cmp := chains[i].TotalLeadTime.Cmp(chains[j].TotalLeadTime); cmp != 0 {
			return cmp > 0
		}
		// Secondary sort: deeper chains first
		if chains[i].PathLength != chains[j].PathLength {
			return chains[i].PathLength > chains[j].PathLength
		}
		return lastCode(chains[i]) < lastCode(chains[j])
	})

	for i := range chains {
		chains[i].TotalPaths = len(chains)
	}
	if topN > 0 && len(chains) > topN {
		chains = chains[:topN]
	}
	return chains
}

// FindCriticalChain returns the single longest chain, or nil for an empty tree
func FindCriticalChain(root *entities.GanttBar) *entities.CriticalChain {
	chains := FindCriticalChains(root, 1)
	if len(chains) == 0 {
		return nil
	}
	return &chains[0]
}

func collectChains(bar *entities.GanttBar, path []*entities.GanttBar, chains *[]entities.CriticalChain) {
	if len(bar.Children) == 0 {
		*chains = append(*chains, buildChain(path))
		return
	}
	for _, child := range bar.Children {
		collectChains(child, append(path, child), chains)
	}
}

func buildChain(path []*entities.GanttBar) entities.CriticalChain {
	chain := entities.CriticalChain{
		TotalLeadTime: decimal.Zero,
		PathLength:    len(path),
		Nodes:         make([]entities.CriticalChainNode, 0, len(path)),
	}

	var bottleneck decimal.Decimal
	cumulative := decimal.Zero
	for i, bar := range path {
		if i > 0 {
			cumulative = cumulative.Add(bar.LeadTime)
			if bar.LeadTime.GreaterThan(bottleneck) {
				bottleneck = bar.LeadTime
				chain.BottleneckCode = bar.MaterialCode
			}
		}
		if bar.Status == entities.Risk {
			chain.RiskCount++
		}
		if chain.EarliestStart.IsZero() || bar.StartDate.Before(chain.EarliestStart) {
			chain.EarliestStart = bar.StartDate
		}

		chain.Nodes = append(chain.Nodes, entities.CriticalChainNode{
			MaterialCode:       bar.MaterialCode,
			MaterialName:       bar.MaterialName,
			Level:              i,
			LeadTime:           bar.LeadTime,
			CumulativeLeadTime: cumulative,
			StartDate:          bar.StartDate,
			Status:             bar.Status,
		})
	}

	chain.TotalLeadTime = cumulative
	return chain
}

func lastCode(chain entities.CriticalChain) entities.MaterialCode {
	if len(chain.Nodes) == 0 {
		return ""
	}
	return chain.Nodes[len(chain.Nodes)-1].MaterialCode
}
