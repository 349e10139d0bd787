package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
)

const bizTimeLayout = "2006-01-02 15:04:05"

// Writer writes snapshots in the scenario layout the Loader reads
type Writer struct {
	encoding Encoding
}

// NewWriter creates a scenario writer for the given encoding
func NewWriter(encoding Encoding) *Writer {
	return &Writer{encoding: encoding}
}

// WriteScenario writes all scenario files into dir, creating it when needed.
// Products are written in code order so output is reproducible.
func (w *Writer) WriteScenario(dir string, snapshot *repositories.Snapshot) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create scenario directory: %w", err)
	}

	products := snapshot.Products()
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })

	var bom [][]string
	for _, product := range products {
		for _, e := range snapshot.BOM[product] {
			bom = append(bom, []string{
				string(product),
				string(e.MaterialCode),
				e.MaterialName,
				string(e.ParentCode),
				strconv.Itoa(e.BOMLevel),
				e.AltPart,
				e.Version,
				decimalField(e.Quantity.IsZero(), e.Quantity.String()),
				e.AltGroupNo,
				strconv.Itoa(e.AltPriority),
			})
		}
	}

	materials := make([][]string, 0, len(snapshot.Materials))
	for _, m := range snapshot.Materials {
		materials = append(materials, []string{
			string(m.Code),
			m.Name,
			m.Attr,
			decimalField(m.PurchaseFixedLeadTime.IsZero(), m.PurchaseFixedLeadTime.String()),
			decimalField(m.ProductFixedLeadTime.IsZero(), m.ProductFixedLeadTime.String()),
			m.Unit,
			decimalField(m.MinOrderQty.IsZero(), m.MinOrderQty.String()),
		})
	}

	requests := make([][]string, 0, len(snapshot.PurchaseRequests))
	for _, pr := range snapshot.PurchaseRequests {
		requests = append(requests, []string{string(pr.MaterialNumber), pr.BillNo, formatBizTime(pr.BizTime)})
	}

	orders := make([][]string, 0, len(snapshot.PurchaseOrders))
	for _, po := range snapshot.PurchaseOrders {
		orders = append(orders, []string{string(po.MaterialNumber), po.BillNo, formatBizTime(po.BizTime), po.DeliverDate})
	}

	mrpProducts := make([]entities.MaterialCode, 0, len(snapshot.MRP))
	for product := range snapshot.MRP {
		mrpProducts = append(mrpProducts, product)
	}
	sort.Slice(mrpProducts, func(i, j int) bool { return mrpProducts[i] < mrpProducts[j] })

	var mrp [][]string
	for _, product := range mrpProducts {
		for _, d := range snapshot.MRP[product] {
			mrp = append(mrp, []string{string(product), string(d.MainMaterial), d.DemandQuantity.String()})
		}
	}

	inventory := make([][]string, 0, len(snapshot.Inventory))
	for _, line := range snapshot.Inventory {
		inventory = append(inventory, []string{
			string(line.MaterialCode),
			line.Warehouse,
			line.BatchNo,
			line.AvailableQty.String(),
			line.BaseQty.String(),
			line.UnitPrice.String(),
		})
	}

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{BOMFile, bomSchema.header, bom},
		{MaterialsFile, materialSchema.header, materials},
		{PurchaseRequestsFile, prSchema.header, requests},
		{PurchaseOrdersFile, poSchema.header, orders},
		{MRPFile, mrpSchema.header, mrp},
		{InventoryFile, inventorySchema.header, inventory},
	}
	for _, f := range files {
		if err := w.writeFile(filepath.Join(dir, f.name), f.header, f.rows); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFile(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	var out io.Writer = file
	var encoder *transform.Writer
	if w.encoding == GBK {
		encoder = transform.NewWriter(file, simplifiedchinese.GBK.NewEncoder())
		out = encoder
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", filename, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode %s: %w", filename, err)
		}
	}
	return file.Close()
}

func decimalField(blank bool, value string) string {
	if blank {
		return ""
	}
	return value
}

func formatBizTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(bizTimeLayout)
}
