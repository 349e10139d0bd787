package entities

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// BarStatus is the schedule risk state of a gantt bar
type BarStatus int

const (
	OnTime BarStatus = iota
	Risk
	Ordered
)

// String method for BarStatus enum
func (s BarStatus) String() string {
	switch s {
	case OnTime:
		return "on_time"
	case Risk:
		return "risk"
	case Ordered:
		return "ordered"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s BarStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *BarStatus) UnmarshalText(data []byte) error {
	switch string(data) {
	case "on_time":
		*s = OnTime
	case "risk":
		*s = Risk
	case "ordered":
		*s = Ordered
	default:
		return fmt.Errorf("unknown bar status %q", data)
	}
	return nil
}

// ProcurementStatus records whether a PR or PO exists for an external material
type ProcurementStatus int

const (
	NotApplicable ProcurementStatus = iota
	Present
	Missing
)

// DocumentKind distinguishes purchase requests from purchase orders
type DocumentKind string

const (
	DocumentPR DocumentKind = "pr"
	DocumentPO DocumentKind = "po"
)

// Label renders the status for a document kind, e.g. "has_po" or "no_pr"
func (p ProcurementStatus) Label(kind DocumentKind) string {
	switch p {
	case Present:
		return "has_" + string(kind)
	case Missing:
		return "no_" + string(kind)
	default:
		return "not_applicable"
	}
}

// ProcurementStatusOf maps a presence flag to Present or Missing
func ProcurementStatusOf(present bool) ProcurementStatus {
	if present {
		return Present
	}
	return Missing
}

// GanttBar is one material's computed position in a backward schedule
type GanttBar struct {
	MaterialCode     MaterialCode      `json:"materialCode"`
	MaterialName     string            `json:"materialName"`
	BOMLevel         int               `json:"bomLevel"`
	ParentCode       *MaterialCode     `json:"parentCode"`
	StartDate        Date              `json:"startDate"`
	EndDate          Date              `json:"endDate"`
	LeadTime         decimal.Decimal   `json:"leadtime"`
	MaterialType     MaterialType      `json:"materialType"`
	Status           BarStatus         `json:"status"`
	HasShortage      bool              `json:"hasShortage"`
	ShortageQuantity decimal.Decimal   `json:"shortageQuantity"`
	PRStatus         ProcurementStatus `json:"-"`
	POStatus         ProcurementStatus `json:"-"`
	PODeliverDate    *string           `json:"poDeliverDate"`
	Children         []*GanttBar       `json:"children"`
}

// PRStatusLabel returns the purchase request status as rendered to consumers
func (b *GanttBar) PRStatusLabel() string {
	return b.PRStatus.Label(DocumentPR)
}

// POStatusLabel returns the purchase order status as rendered to consumers
func (b *GanttBar) POStatusLabel() string {
	return b.POStatus.Label(DocumentPO)
}

// IsRoot reports whether the bar is the product itself
func (b *GanttBar) IsRoot() bool {
	return b.ParentCode == nil
}

// MarshalJSON renders the procurement statuses as their labels
func (b *GanttBar) MarshalJSON() ([]byte, error) {
	type bar GanttBar
	return json.Marshal(struct {
		*bar
		PRStatus string `json:"prStatus"`
		POStatus string `json:"poStatus"`
	}{
		bar:      (*bar)(b),
		PRStatus: b.PRStatusLabel(),
		POStatus: b.POStatusLabel(),
	})
}
