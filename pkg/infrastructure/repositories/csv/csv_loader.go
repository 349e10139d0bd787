package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
)

// Scenario file names
const (
	BOMFile              = "bom.csv"
	MaterialsFile        = "materials.csv"
	PurchaseRequestsFile = "purchase_requests.csv"
	PurchaseOrdersFile   = "purchase_orders.csv"
	MRPFile              = "mrp.csv"
	InventoryFile        = "inventory.csv"
)

// Trailing columns listed in a schema's optional count may be left off the
// header; rows are padded with blanks for the missing ones.
type schema struct {
	header   []string
	optional int
}

var (
	bomSchema = schema{
		header: []string{"product_code", "material_code", "material_name", "parent_material_code", "bom_level", "alt_part", "bom_version",
			"quantity", "alt_group_no", "alt_priority"},
		optional: 3,
	}
	materialSchema = schema{
		header: []string{"material_code", "material_name", "materialattr", "purchase_fixedleadtime", "product_fixedleadtime",
			"baseunit_name", "purchase_huid_minlotsize"},
		optional: 2,
	}
	prSchema        = schema{header: []string{"material_number", "billno", "biztime"}}
	poSchema        = schema{header: []string{"material_number", "billno", "biztime", "deliverdate"}}
	mrpSchema       = schema{header: []string{"product_code", "main_material", "material_demand_quantity"}}
	inventorySchema = schema{header: []string{"material_code", "warehouse", "batch_no", "available_base_qty", "base_qty", "unit_price"}}
)

// Encoding is the character set of scenario files
type Encoding string

const (
	UTF8 Encoding = "utf8"
	GBK  Encoding = "gbk"
)

// ParseEncoding accepts utf8/utf-8/gbk in any case; empty means utf8
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "gbk", "gb2312":
		return GBK, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q (expected utf8 or gbk)", s)
	}
}

// Loader handles loading supply data from CSV files
type Loader struct {
	encoding Encoding
}

// NewLoader creates a new CSV loader for UTF-8 files
func NewLoader() *Loader {
	return &Loader{encoding: UTF8}
}

// NewLoaderWithEncoding creates a loader for files in the given encoding
func NewLoaderWithEncoding(encoding Encoding) *Loader {
	return &Loader{encoding: encoding}
}

// LoadScenario loads a scenario directory. bom.csv and materials.csv are required;
// the procurement, MRP and inventory files may be absent.
func (l *Loader) LoadScenario(dir string) (*repositories.Snapshot, error) {
	snapshot := repositories.NewSnapshot()

	bom, err := l.LoadBOM(filepath.Join(dir, BOMFile))
	if err != nil {
		return nil, err
	}
	snapshot.BOM = bom

	if snapshot.Materials, err = l.LoadMaterials(filepath.Join(dir, MaterialsFile)); err != nil {
		return nil, err
	}

	if snapshot.PurchaseRequests, err = l.LoadPurchaseRequests(filepath.Join(dir, PurchaseRequestsFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if snapshot.PurchaseOrders, err = l.LoadPurchaseOrders(filepath.Join(dir, PurchaseOrdersFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	mrp, err := l.LoadMRP(filepath.Join(dir, MRPFile))
	switch {
	case err == nil:
		snapshot.MRP = mrp
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if snapshot.Inventory, err = l.LoadInventory(filepath.Join(dir, InventoryFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return snapshot, nil
}

// LoadBOM loads BOM edges grouped by product code
func (l *Loader) LoadBOM(filename string) (map[entities.MaterialCode][]entities.BOMEdge, error) {
	records, err := l.readRecords(filename, "BOM", bomSchema)
	if err != nil {
		return nil, err
	}

	bom := make(map[entities.MaterialCode][]entities.BOMEdge)
	for i, record := range records {
		product := entities.MaterialCode(record[0])
		if product == "" {
			return nil, fmt.Errorf("BOM CSV row %d: product_code cannot be empty", i+2)
		}

		edge, err := parseBOMEdge(record)
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: %w", i+2, err)
		}
		bom[product] = append(bom[product], edge)
	}

	return bom, nil
}

// LoadMaterials loads material master data
func (l *Loader) LoadMaterials(filename string) ([]entities.MaterialRecord, error) {
	records, err := l.readRecords(filename, "materials", materialSchema)
	if err != nil {
		return nil, err
	}

	materials := make([]entities.MaterialRecord, 0, len(records))
	for i, record := range records {
		if record[0] == "" {
			return nil, fmt.Errorf("materials CSV row %d: material_code cannot be empty", i+2)
		}
		materials = append(materials, entities.MaterialRecord{
			Code:                  entities.MaterialCode(record[0]),
			Name:                  record[1],
			Attr:                  record[2],
			PurchaseFixedLeadTime: parseLenientDecimal(record[3]),
			ProductFixedLeadTime:  parseLenientDecimal(record[4]),
			Unit:                  record[5],
			MinOrderQty:           parseLenientDecimal(record[6]),
		})
	}

	return materials, nil
}

// LoadPurchaseRequests loads purchase request lines
func (l *Loader) LoadPurchaseRequests(filename string) ([]entities.PurchaseRequest, error) {
	records, err := l.readRecords(filename, "purchase requests", prSchema)
	if err != nil {
		return nil, err
	}

	requests := make([]entities.PurchaseRequest, 0, len(records))
	for i, record := range records {
		bizTime, err := parseBizTime(record[2])
		if err != nil {
			return nil, fmt.Errorf("purchase requests CSV row %d: %w", i+2, err)
		}
		requests = append(requests, entities.PurchaseRequest{
			MaterialNumber: entities.MaterialCode(record[0]),
			BillNo:         record[1],
			BizTime:        bizTime,
		})
	}

	return requests, nil
}

// LoadPurchaseOrders loads purchase order lines
func (l *Loader) LoadPurchaseOrders(filename string) ([]entities.PurchaseOrder, error) {
	records, err := l.readRecords(filename, "purchase orders", poSchema)
	if err != nil {
		return nil, err
	}

	orders := make([]entities.PurchaseOrder, 0, len(records))
	for i, record := range records {
		bizTime, err := parseBizTime(record[2])
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: %w", i+2, err)
		}
		orders = append(orders, entities.PurchaseOrder{
			MaterialNumber: entities.MaterialCode(record[0]),
			BillNo:         record[1],
			BizTime:        bizTime,
			DeliverDate:    record[3],
		})
	}

	return orders, nil
}

// LoadMRP loads net demand rows grouped by product code
func (l *Loader) LoadMRP(filename string) (map[entities.MaterialCode][]entities.MRPDemand, error) {
	records, err := l.readRecords(filename, "MRP", mrpSchema)
	if err != nil {
		return nil, err
	}

	mrp := make(map[entities.MaterialCode][]entities.MRPDemand)
	for i, record := range records {
		product := entities.MaterialCode(record[0])
		if product == "" || record[1] == "" {
			return nil, fmt.Errorf("MRP CSV row %d: product_code and main_material are required", i+2)
		}
		mrp[product] = append(mrp[product], entities.MRPDemand{
			MainMaterial:   entities.MaterialCode(record[1]),
			DemandQuantity: parseLenientDecimal(record[2]),
		})
	}

	return mrp, nil
}

// LoadInventory loads warehouse/batch stock lines
func (l *Loader) LoadInventory(filename string) ([]entities.InventoryRecord, error) {
	records, err := l.readRecords(filename, "inventory", inventorySchema)
	if err != nil {
		return nil, err
	}

	lines := make([]entities.InventoryRecord, 0, len(records))
	for i, record := range records {
		if record[0] == "" {
			return nil, fmt.Errorf("inventory CSV row %d: material_code cannot be empty", i+2)
		}
		lines = append(lines, entities.InventoryRecord{
			MaterialCode: entities.MaterialCode(record[0]),
			Warehouse:    record[1],
			BatchNo:      record[2],
			AvailableQty: parseLenientDecimal(record[3]),
			BaseQty:      parseLenientDecimal(record[4]),
			UnitPrice:    parseLenientDecimal(record[5]),
		})
	}

	return lines, nil
}

// readRecords opens a file, validates its header and returns the data rows
// trimmed and padded to the full schema width
func (l *Loader) readRecords(filename, kind string, sc schema) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	var r io.Reader = file
	if l.encoding == GBK {
		r = transform.NewReader(file, simplifiedchinese.GBK.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !sc.accepts(header) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, sc.header, header)
	}

	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(header), len(record))
		}
		row := make([]string, len(sc.header))
		for j := range record {
			row[j] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// accepts reports whether a header is the schema minus some optional trailing columns
func (sc schema) accepts(actual []string) bool {
	if len(actual) < len(sc.header)-sc.optional || len(actual) > len(sc.header) {
		return false
	}

	for i, col := range actual {
		if strings.ToLower(strings.TrimSpace(col)) != sc.header[i] {
			return false
		}
	}

	return true
}

func parseBOMEdge(record []string) (entities.BOMEdge, error) {
	level := 0
	if record[4] != "" {
		var err error
		level, err = strconv.Atoi(record[4])
		if err != nil {
			return entities.BOMEdge{}, fmt.Errorf("invalid bom_level: %s", record[4])
		}
	}

	edge, err := entities.NewBOMEdge(
		entities.MaterialCode(record[1]),
		record[2],
		entities.MaterialCode(record[3]),
		level,
		record[5],
	)
	if err != nil {
		return entities.BOMEdge{}, err
	}
	edge.Version = record[6]
	edge.Quantity = parseLenientDecimal(record[7])
	edge.AltGroupNo = record[8]
	if record[9] != "" {
		priority, err := strconv.Atoi(record[9])
		if err != nil {
			return entities.BOMEdge{}, fmt.Errorf("invalid alt_priority: %s", record[9])
		}
		edge.AltPriority = priority
	}
	return *edge, nil
}

// parseLenientDecimal treats blank or malformed numbers as zero
func parseLenientDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var bizTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// parseBizTime keeps time-of-day so same-day documents still order; blank is zero
func parseBizTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range bizTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid biztime format: %s (expected YYYY-MM-DD)", s)
}
