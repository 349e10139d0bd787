package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRequest is one purchase request line
type PurchaseRequest struct {
	MaterialNumber MaterialCode `json:"material_number"`
	BillNo         string       `json:"billno"`
	BizTime        time.Time    `json:"biztime"`
}

// PurchaseOrder is one purchase order line with its promised delivery
type PurchaseOrder struct {
	MaterialNumber MaterialCode `json:"material_number"`
	BillNo         string       `json:"billno"`
	BizTime        time.Time    `json:"biztime"`
	DeliverDate    string       `json:"deliverdate"`
}

// MRPDemand is the net demand of one material as computed by MRP.
// A negative quantity is a shortage of that magnitude.
type MRPDemand struct {
	MainMaterial   MaterialCode    `json:"main_material"`
	DemandQuantity decimal.Decimal `json:"material_demand_quantity"`
}
