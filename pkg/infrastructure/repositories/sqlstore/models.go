package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// BOMEdgeRow is one BOM line of a product's expansion
type BOMEdgeRow struct {
	ID           uint   `gorm:"primaryKey"`
	ProductCode  string `gorm:"size:64;index;not null"`
	MaterialCode string `gorm:"size:64;not null"`
	MaterialName string `gorm:"size:255"`
	ParentCode   string `gorm:"size:64"`
	BOMLevel     int
	AltPart      string          `gorm:"size:32"`
	Version      string          `gorm:"size:64"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,6)"`
	AltGroupNo   string          `gorm:"size:32"`
	AltPriority  int
}

func (BOMEdgeRow) TableName() string { return "bom_edges" }

func (r BOMEdgeRow) toEntity() entities.BOMEdge {
	return entities.BOMEdge{
		MaterialCode: entities.MaterialCode(r.MaterialCode),
		MaterialName: r.MaterialName,
		ParentCode:   entities.MaterialCode(r.ParentCode),
		BOMLevel:     r.BOMLevel,
		AltPart:      r.AltPart,
		Version:      r.Version,
		Quantity:     r.Quantity,
		AltGroupNo:   r.AltGroupNo,
		AltPriority:  r.AltPriority,
	}
}

// MaterialRow is material master data keyed by code
type MaterialRow struct {
	Code                  string          `gorm:"primaryKey;size:64"`
	Name                  string          `gorm:"size:255"`
	Attr                  string          `gorm:"size:32"`
	PurchaseFixedLeadTime decimal.Decimal `gorm:"type:decimal(12,2)"`
	ProductFixedLeadTime  decimal.Decimal `gorm:"type:decimal(12,2)"`
	Unit                  string          `gorm:"size:32"`
	MinOrderQty           decimal.Decimal `gorm:"type:decimal(18,4)"`
}

func (MaterialRow) TableName() string { return "materials" }

func (r MaterialRow) toEntity() entities.MaterialRecord {
	return entities.MaterialRecord{
		Code:                  entities.MaterialCode(r.Code),
		Name:                  r.Name,
		Attr:                  r.Attr,
		PurchaseFixedLeadTime: r.PurchaseFixedLeadTime,
		ProductFixedLeadTime:  r.ProductFixedLeadTime,
		Unit:                  r.Unit,
		MinOrderQty:           r.MinOrderQty,
	}
}

// PurchaseRequestRow is one purchase request line
type PurchaseRequestRow struct {
	ID             uint   `gorm:"primaryKey"`
	MaterialNumber string `gorm:"size:64;uniqueIndex:idx_pr_material_bill;not null"`
	BillNo         string `gorm:"size:64;uniqueIndex:idx_pr_material_bill"`
	BizTime        time.Time
}

func (PurchaseRequestRow) TableName() string { return "purchase_requests" }

func (r PurchaseRequestRow) toEntity() entities.PurchaseRequest {
	return entities.PurchaseRequest{
		MaterialNumber: entities.MaterialCode(r.MaterialNumber),
		BillNo:         r.BillNo,
		BizTime:        r.BizTime.UTC(),
	}
}

// PurchaseOrderRow is one purchase order line
type PurchaseOrderRow struct {
	ID             uint   `gorm:"primaryKey"`
	MaterialNumber string `gorm:"size:64;uniqueIndex:idx_po_material_bill;not null"`
	BillNo         string `gorm:"size:64;uniqueIndex:idx_po_material_bill"`
	BizTime        time.Time
	DeliverDate    string `gorm:"size:32"`
}

func (PurchaseOrderRow) TableName() string { return "purchase_orders" }

func (r PurchaseOrderRow) toEntity() entities.PurchaseOrder {
	return entities.PurchaseOrder{
		MaterialNumber: entities.MaterialCode(r.MaterialNumber),
		BillNo:         r.BillNo,
		BizTime:        r.BizTime.UTC(),
		DeliverDate:    r.DeliverDate,
	}
}

// MRPDemandRow is one net demand row of a product's MRP run
type MRPDemandRow struct {
	ID             uint            `gorm:"primaryKey"`
	ProductCode    string          `gorm:"size:64;index;not null"`
	MainMaterial   string          `gorm:"size:64;not null"`
	DemandQuantity decimal.Decimal `gorm:"type:decimal(18,4)"`
}

func (MRPDemandRow) TableName() string { return "mrp_demands" }

func (r MRPDemandRow) toEntity() entities.MRPDemand {
	return entities.MRPDemand{
		MainMaterial:   entities.MaterialCode(r.MainMaterial),
		DemandQuantity: r.DemandQuantity,
	}
}

// InventoryRow is the stock of one material in one warehouse batch
type InventoryRow struct {
	ID           uint            `gorm:"primaryKey"`
	MaterialCode string          `gorm:"size:64;index;not null"`
	Warehouse    string          `gorm:"size:64"`
	BatchNo      string          `gorm:"size:64"`
	AvailableQty decimal.Decimal `gorm:"type:decimal(18,4)"`
	BaseQty      decimal.Decimal `gorm:"type:decimal(18,4)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4)"`
}

func (InventoryRow) TableName() string { return "inventory_lines" }

func (r InventoryRow) toEntity() entities.InventoryRecord {
	return entities.InventoryRecord{
		MaterialCode: entities.MaterialCode(r.MaterialCode),
		Warehouse:    r.Warehouse,
		BatchNo:      r.BatchNo,
		AvailableQty: r.AvailableQty,
		BaseQty:      r.BaseQty,
		UnitPrice:    r.UnitPrice,
	}
}

// AllModels returns every model managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&BOMEdgeRow{},
		&MaterialRow{},
		&PurchaseRequestRow{},
		&PurchaseOrderRow{},
		&MRPDemandRow{},
		&InventoryRow{},
	}
}
