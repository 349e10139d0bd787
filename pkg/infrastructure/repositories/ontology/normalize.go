package ontology

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// Field spellings seen across object types, first match wins
var (
	materialCodeFields   = []string{"material_code", "number", "item_code", "child_code"}
	materialNameFields   = []string{"material_name", "name", "child_name"}
	parentCodeFields     = []string{"parent_material_code", "bom_material_code", "parent_code"}
	bomLevelFields       = []string{"bom_level", "level"}
	altPartFields        = []string{"alt_part", "alternative_part"}
	bomVersionFields     = []string{"bom_version", "version"}
	materialAttrFields   = []string{"materialattr", "material_attr", "attr"}
	purchaseLeadFields   = []string{"purchase_fixedleadtime", "purchase_leadtime", "purchase_lead_time"}
	productLeadFields    = []string{"product_fixedleadtime", "product_leadtime", "product_lead_time"}
	materialNumberFields = []string{"material_number", "material_code", "number"}
	billNoFields         = []string{"billno", "bill_no"}
	bizTimeFields        = []string{"biztime", "biz_time", "bizdate"}
	deliverDateFields    = []string{"deliverdate", "deliver_date", "delivery_date"}
	mainMaterialFields   = []string{"main_material", "material_code", "material_number"}
	demandQuantityFields = []string{"material_demand_quantity", "demand_quantity", "net_demand"}
	standardUsageFields  = []string{"standard_usage", "child_quantity", "quantity"}
	usageNumeratorFields = []string{"usage_numerator"}
	usageDenomFields     = []string{"usage_denominator"}
	altGroupFields       = []string{"alt_group_no", "alternative_group"}
	altPriorityFields    = []string{"alt_priority"}
	unitFields           = []string{"baseunit_name", "unit"}
	moqFields            = []string{"purchase_huid_minlotsize", "moq"}
	inventoryCodeFields  = []string{"material_code", "item_code"}
	warehouseFields      = []string{"warehouse_name", "warehouse", "stock_name"}
	batchNoFields        = []string{"batch_no", "batchno"}
	availableQtyFields   = []string{"available_quantity", "available_base_qty"}
	baseQtyFields        = []string{"quantity", "base_qty"}
	unitPriceFields      = []string{"unit_price", "price"}
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	compactDate,
}

const compactDate = "20060102"

// NormalizeBOMEdge maps a BOM object to an edge; records without a material code are skipped
func NormalizeBOMEdge(r Record) (entities.BOMEdge, bool) {
	code := r.stringValue(materialCodeFields...)
	if code == "" {
		return entities.BOMEdge{}, false
	}
	return entities.BOMEdge{
		MaterialCode: entities.MaterialCode(code),
		MaterialName: r.stringValue(materialNameFields...),
		ParentCode:   entities.MaterialCode(r.stringValue(parentCodeFields...)),
		BOMLevel:     int(r.decimalValue(bomLevelFields...).IntPart()),
		AltPart:      r.stringValue(altPartFields...),
		Version:      r.stringValue(bomVersionFields...),
		Quantity:     r.usage(),
		AltGroupNo:   r.stringValue(altGroupFields...),
		AltPriority:  r.altPriority(),
	}, true
}

// usage prefers standard_usage and falls back to numerator/denominator.
// A zero denominator yields zero, which edges treat as one.
func (r Record) usage() decimal.Decimal {
	if q := r.decimalValue(standardUsageFields...); q.IsPositive() {
		return q
	}
	numerator, denominator := decimal.NewFromInt(1), decimal.NewFromInt(1)
	if _, ok := r.lookup(usageNumeratorFields...); ok {
		numerator = r.decimalValue(usageNumeratorFields...)
	}
	if _, ok := r.lookup(usageDenomFields...); ok {
		denominator = r.decimalValue(usageDenomFields...)
	}
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.DivRound(denominator, 6)
}

func (r Record) altPriority() int {
	if _, ok := r.lookup(altPriorityFields...); !ok {
		return entities.DefaultAltPriority
	}
	p := int(r.decimalValue(altPriorityFields...).IntPart())
	if p == 0 {
		return entities.DefaultAltPriority
	}
	return p
}

// NormalizeMaterial maps a material object to master data.
// Unparseable lead times are zero so scheduling falls back to the default.
func NormalizeMaterial(r Record) (entities.MaterialRecord, bool) {
	code := r.stringValue(materialCodeFields...)
	if code == "" {
		return entities.MaterialRecord{}, false
	}
	return entities.MaterialRecord{
		Code:                  entities.MaterialCode(code),
		Name:                  r.stringValue(materialNameFields...),
		Attr:                  r.stringValue(materialAttrFields...),
		PurchaseFixedLeadTime: r.decimalValue(purchaseLeadFields...),
		ProductFixedLeadTime:  r.decimalValue(productLeadFields...),
		Unit:                  r.stringValue(unitFields...),
		MinOrderQty:           r.decimalValue(moqFields...),
	}, true
}

// NormalizeInventory maps one warehouse/batch stock line
func NormalizeInventory(r Record) (entities.InventoryRecord, bool) {
	code := r.stringValue(inventoryCodeFields...)
	if code == "" {
		return entities.InventoryRecord{}, false
	}
	return entities.InventoryRecord{
		MaterialCode: entities.MaterialCode(code),
		Warehouse:    r.stringValue(warehouseFields...),
		BatchNo:      r.stringValue(batchNoFields...),
		AvailableQty: r.decimalValue(availableQtyFields...),
		BaseQty:      r.decimalValue(baseQtyFields...),
		UnitPrice:    r.decimalValue(unitPriceFields...),
	}, true
}

// NormalizePurchaseRequest maps a PR line
func NormalizePurchaseRequest(r Record) (entities.PurchaseRequest, bool) {
	code := r.stringValue(materialNumberFields...)
	if code == "" {
		return entities.PurchaseRequest{}, false
	}
	return entities.PurchaseRequest{
		MaterialNumber: entities.MaterialCode(code),
		BillNo:         r.stringValue(billNoFields...),
		BizTime:        r.timeValue(bizTimeFields...),
	}, true
}

// NormalizePurchaseOrder maps a PO line; the delivery date is reduced to YYYY-MM-DD when parseable
func NormalizePurchaseOrder(r Record) (entities.PurchaseOrder, bool) {
	code := r.stringValue(materialNumberFields...)
	if code == "" {
		return entities.PurchaseOrder{}, false
	}

	deliver := r.stringValue(deliverDateFields...)
	if d := r.timeValue(deliverDateFields...); !d.IsZero() {
		deliver = entities.DateOf(d).String()
	}

	return entities.PurchaseOrder{
		MaterialNumber: entities.MaterialCode(code),
		BillNo:         r.stringValue(billNoFields...),
		BizTime:        r.timeValue(bizTimeFields...),
		DeliverDate:    deliver,
	}, true
}

// NormalizeMRPDemand maps an MRP net demand row; unparseable quantities are zero
func NormalizeMRPDemand(r Record) (entities.MRPDemand, bool) {
	code := r.stringValue(mainMaterialFields...)
	if code == "" {
		return entities.MRPDemand{}, false
	}
	return entities.MRPDemand{
		MainMaterial:   entities.MaterialCode(code),
		DemandQuantity: r.decimalValue(demandQuantityFields...),
	}, true
}

func (r Record) lookup(fields ...string) (interface{}, bool) {
	for _, f := range fields {
		if v, ok := r[f]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (r Record) stringValue(fields ...string) string {
	v, ok := r.lookup(fields...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func (r Record) decimalValue(fields ...string) decimal.Decimal {
	v, ok := r.lookup(fields...)
	if !ok {
		return decimal.Zero
	}
	switch t := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// timeValue accepts date strings or unix epoch milliseconds
func (r Record) timeValue(fields ...string) time.Time {
	v, ok := r.lookup(fields...)
	if !ok {
		return time.Time{}
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', 0, 64)
	case string:
		s = strings.TrimSpace(t)
	default:
		return time.Time{}
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > len(compactDate) {
		return time.UnixMilli(ms).UTC()
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
