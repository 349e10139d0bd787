package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CriticalChainNode represents one bar on the critical chain
type CriticalChainNode struct {
	MaterialCode       MaterialCode    `json:"materialCode"`
	MaterialName       string          `json:"materialName"`
	Level              int             `json:"level"`
	LeadTime           decimal.Decimal `json:"leadtime"`
	CumulativeLeadTime decimal.Decimal `json:"cumulativeLeadtime"`
	StartDate          Date            `json:"startDate"`
	Status             BarStatus       `json:"status"`
}

// CriticalChain is the root-to-leaf path with the longest cumulative lead time
type CriticalChain struct {
	TotalLeadTime  decimal.Decimal     `json:"totalLeadtime"`
	PathLength     int                 `json:"pathLength"`
	Nodes          []CriticalChainNode `json:"nodes"`
	BottleneckCode MaterialCode        `json:"bottleneckCode"` // node with the longest own lead time
	EarliestStart  Date                `json:"earliestStart"`
	RiskCount      int                 `json:"riskCount"`
	TotalPaths     int                 `json:"totalPaths"`
}

// Summary returns a formatted summary of the chain
func (c *CriticalChain) Summary() string {
	if c == nil || len(c.Nodes) == 0 {
		return "No critical chain found"
	}

	summary := fmt.Sprintf("Critical chain: %s days over %d levels, earliest start %s",
		c.TotalLeadTime.String(), c.PathLength, c.EarliestStart)
	if c.BottleneckCode != "" {
		summary += fmt.Sprintf(" | Bottleneck: %s", c.BottleneckCode)
	}
	return summary
}

// Codes returns the material codes along the chain, root first
func (c *CriticalChain) Codes() []MaterialCode {
	codes := make([]MaterialCode, 0, len(c.Nodes))
	for _, node := range c.Nodes {
		codes = append(codes, node.MaterialCode)
	}
	return codes
}
