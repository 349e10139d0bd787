package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// DefaultNodeLimit bounds the size of one schedule tree
const DefaultNodeLimit = 2000

// ScheduleInput is everything one backward-scheduling run needs
type ScheduleInput struct {
	ProductCode     entities.MaterialCode
	ProductName     string
	ProductionStart entities.Date
	ProductionEnd   entities.Date
	Tree            *BOMTree
	Materials       MaterialIndex
	Procurement     *ProcurementIndex
	Shortages       ShortageIndex
}

// ScheduleResult is the root bar plus traversal diagnostics
type ScheduleResult struct {
	Root      *entities.GanttBar
	NodeCount int
	Truncated bool
	Warnings  []string
}

// BackwardScheduler places every BOM component so that it completes one day
// before its parent starts, walking the tree breadth-first from the product.
type BackwardScheduler struct {
	NodeLimit       int
	DefaultLeadTime int
	SortSiblings    bool
	Now             func() time.Time
}

// NewBackwardScheduler creates a scheduler with the default limits
func NewBackwardScheduler() *BackwardScheduler {
	return &BackwardScheduler{
		NodeLimit:       DefaultNodeLimit,
		DefaultLeadTime: entities.DefaultLeadTimeDays,
		Now:             time.Now,
	}
}

type scheduleItem struct {
	parent *entities.GanttBar
	edges  []entities.BOMEdge
}

// Schedule builds the backward schedule tree. It keeps no state between calls.
func (s *BackwardScheduler) Schedule(in ScheduleInput) *ScheduleResult {
	limit := s.NodeLimit
	if limit <= 0 {
		limit = DefaultNodeLimit
	}
	defaultLT := s.DefaultLeadTime
	if defaultLT <= 0 {
		defaultLT = entities.DefaultLeadTimeDays
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	today := entities.DateOf(now())

	materials := in.Materials
	if materials == nil {
		materials = MaterialIndex{}
	}
	procurement := in.Procurement
	if procurement == nil {
		procurement = NewProcurementIndex(nil, nil)
	}
	tree := in.Tree
	if tree == nil {
		tree = BuildBOMTree(in.ProductCode, nil)
	}

	product := materials.Get(in.ProductCode)
	name := in.ProductName
	if name == "" {
		name = product.Name
	}
	productLT := entities.MaterialRecord{ProductFixedLeadTime: product.ProductFixedLeadTime}.LeadTime(defaultLT)

	root := &entities.GanttBar{
		MaterialCode:     in.ProductCode,
		MaterialName:     name,
		BOMLevel:         0,
		StartDate:        in.ProductionStart,
		EndDate:          in.ProductionEnd,
		LeadTime:         productLT,
		MaterialType:     entities.SelfMade,
		Status:           entities.OnTime,
		ShortageQuantity: decimal.Zero,
		PRStatus:         entities.NotApplicable,
		POStatus:         entities.NotApplicable,
		Children:         []*entities.GanttBar{},
	}

	result := &ScheduleResult{Root: root, NodeCount: 1}
	visited := map[entities.MaterialCode]bool{in.ProductCode: true}

	queue := []scheduleItem{{parent: root, edges: s.childEdges(tree, in.ProductCode)}}
	for len(queue) > 0 && !result.Truncated {
		item := queue[0]
		queue = queue[1:]

		for _, edge := range item.edges {
			if visited[edge.MaterialCode] {
				continue
			}
			if result.NodeCount >= limit {
				result.Truncated = true
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"schedule for %s stopped at the %d node limit; the tree is incomplete",
					in.ProductCode, limit))
				break
			}

			bar := s.scheduleChild(item.parent, edge, materials.Get(edge.MaterialCode), procurement, in.Shortages, defaultLT, today)
			item.parent.Children = append(item.parent.Children, bar)
			visited[edge.MaterialCode] = true
			result.NodeCount++

			if tree.HasChildren(edge.MaterialCode) {
				queue = append(queue, scheduleItem{parent: bar, edges: s.childEdges(tree, edge.MaterialCode)})
			}
		}
	}

	return result
}

func (s *BackwardScheduler) childEdges(tree *BOMTree, code entities.MaterialCode) []entities.BOMEdge {
	if s.SortSiblings {
		return tree.SortedChildren(code)
	}
	return tree.Children(code)
}

func (s *BackwardScheduler) scheduleChild(
	parent *entities.GanttBar,
	edge entities.BOMEdge,
	material entities.MaterialRecord,
	procurement *ProcurementIndex,
	shortages ShortageIndex,
	defaultLT int,
	today entities.Date,
) *entities.GanttBar {
	materialType := material.Type()
	leadTime := material.LeadTime(defaultLT)

	endDate := parent.StartDate.AddDays(-1)
	startDate := endDate.AddDays(-entities.LeadTimeDays(leadTime))

	hasShortage, shortageQty := shortages.Shortage(edge.MaterialCode)

	hasPO := procurement.HasPO(edge.MaterialCode)
	var deliverDate *string
	if hasPO {
		if d, ok := procurement.LatestPODeliverDate(edge.MaterialCode); ok {
			deliverDate = &d
		}
	}

	status := entities.OnTime
	switch {
	case hasPO:
		status = entities.Ordered
	case startDate.Before(today) || endDate.After(parent.StartDate):
		status = entities.Risk
	}

	prStatus, poStatus := entities.NotApplicable, entities.NotApplicable
	if materialType.IsExternal() {
		prStatus = entities.ProcurementStatusOf(procurement.HasPR(edge.MaterialCode))
		poStatus = entities.ProcurementStatusOf(hasPO)
	}

	name := edge.MaterialName
	if name == "" {
		name = material.Name
	}
	parentCode := parent.MaterialCode

	return &entities.GanttBar{
		MaterialCode:     edge.MaterialCode,
		MaterialName:     name,
		BOMLevel:         edge.BOMLevel,
		ParentCode:       &parentCode,
		StartDate:        startDate,
		EndDate:          endDate,
		LeadTime:         leadTime,
		MaterialType:     materialType,
		Status:           status,
		HasShortage:      hasShortage,
		ShortageQuantity: shortageQty,
		PRStatus:         prStatus,
		POStatus:         poStatus,
		PODeliverDate:    deliverDate,
		Children:         []*entities.GanttBar{},
	}
}
