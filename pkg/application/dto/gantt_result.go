package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// GanttResult is the complete output of one scheduling run
type GanttResult struct {
	RunID           string                   `json:"runId"`
	GeneratedAt     time.Time                `json:"generatedAt"`
	ProductCode     entities.MaterialCode    `json:"productCode"`
	ProductionStart entities.Date            `json:"productionStart"`
	ProductionEnd   entities.Date            `json:"productionEnd"`
	Root            *entities.GanttBar       `json:"root"`
	TimeRange       entities.DateRange       `json:"timeRange"`
	Statistics      entities.GanttStatistics `json:"statistics"`
	CriticalChain   *entities.CriticalChain  `json:"criticalChain"`
	NodeCount       int                      `json:"nodeCount"`
	Truncated       bool                     `json:"truncated"`
	Warnings        []string                 `json:"warnings"`
	ProcessingMS    int64                    `json:"processingTimeMs"`

	// Bars is the pre-order flattening of Root
	Bars []*entities.GanttBar `json:"-"`
}

// Shortages returns the flattened bars with a material shortage
func (r *GanttResult) Shortages() []*entities.GanttBar {
	var short []*entities.GanttBar
	for _, bar := range r.Bars {
		if bar.HasShortage {
			short = append(short, bar)
		}
	}
	return short
}

// GanttRow is one bar without its subtree, for tables and flat listings
type GanttRow struct {
	MaterialCode     entities.MaterialCode  `json:"materialCode"`
	MaterialName     string                 `json:"materialName"`
	BOMLevel         int                    `json:"bomLevel"`
	ParentCode       *entities.MaterialCode `json:"parentCode"`
	StartDate        entities.Date          `json:"startDate"`
	EndDate          entities.Date          `json:"endDate"`
	LeadTime         decimal.Decimal        `json:"leadtime"`
	MaterialType     entities.MaterialType  `json:"materialType"`
	Status           entities.BarStatus     `json:"status"`
	HasShortage      bool                   `json:"hasShortage"`
	ShortageQuantity decimal.Decimal        `json:"shortageQuantity"`
	PRStatus         string                 `json:"prStatus"`
	POStatus         string                 `json:"poStatus"`
	PODeliverDate    *string                `json:"poDeliverDate"`
	ChildCount       int                    `json:"childCount"`
}

// NewGanttRows converts bars to rows, keeping order
func NewGanttRows(bars []*entities.GanttBar) []GanttRow {
	rows := make([]GanttRow, len(bars))
	for i, bar := range bars {
		rows[i] = GanttRow{
			MaterialCode:     bar.MaterialCode,
			MaterialName:     bar.MaterialName,
			BOMLevel:         bar.BOMLevel,
			ParentCode:       bar.ParentCode,
			StartDate:        bar.StartDate,
			EndDate:          bar.EndDate,
			LeadTime:         bar.LeadTime,
			MaterialType:     bar.MaterialType,
			Status:           bar.Status,
			HasShortage:      bar.HasShortage,
			ShortageQuantity: bar.ShortageQuantity,
			PRStatus:         bar.PRStatusLabel(),
			POStatus:         bar.POStatusLabel(),
			PODeliverDate:    bar.PODeliverDate,
			ChildCount:       len(bar.Children),
		}
	}
	return rows
}

// ShortageColumns is the header of the shortage export
var ShortageColumns = []string{
	"material_code",
	"material_name",
	"material_type",
	"bom_level",
	"shortage_quantity",
	"pr_status",
	"po_status",
	"leadtime",
	"end_date",
}

// ShortageRow is one line of the shortage export
type ShortageRow struct {
	MaterialCode     entities.MaterialCode
	MaterialName     string
	MaterialType     entities.MaterialType
	BOMLevel         int
	ShortageQuantity decimal.Decimal
	PRStatus         string
	POStatus         string
	LeadTime         decimal.Decimal
	EndDate          entities.Date
}

// Record renders the row in ShortageColumns order
func (r ShortageRow) Record() []string {
	return []string{
		string(r.MaterialCode),
		r.MaterialName,
		r.MaterialType.String(),
		strconv.Itoa(r.BOMLevel),
		r.ShortageQuantity.String(),
		r.PRStatus,
		r.POStatus,
		r.LeadTime.String(),
		r.EndDate.String(),
	}
}

// NewShortageRows keeps the bars with a shortage, in flattened order
func NewShortageRows(bars []*entities.GanttBar) []ShortageRow {
	var rows []ShortageRow
	for _, bar := range bars {
		if !bar.HasShortage {
			continue
		}
		rows = append(rows, ShortageRow{
			MaterialCode:     bar.MaterialCode,
			MaterialName:     bar.MaterialName,
			MaterialType:     bar.MaterialType,
			BOMLevel:         bar.BOMLevel,
			ShortageQuantity: bar.ShortageQuantity,
			PRStatus:         bar.PRStatusLabel(),
			POStatus:         bar.POStatusLabel(),
			LeadTime:         bar.LeadTime,
			EndDate:          bar.EndDate,
		})
	}
	return rows
}
