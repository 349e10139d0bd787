package gantt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/infrastructure/repositories/memory"
)

func fixedNow() time.Time {
	return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
}

func testStore() *memory.SupplyStore {
	snapshot := repositories.NewSnapshot()
	snapshot.BOM["P1"] = []entities.BOMEdge{
		{MaterialCode: "M1", MaterialName: "Motor", BOMLevel: 1},
		{MaterialCode: "M2", MaterialName: "Frame", BOMLevel: 1},
		{MaterialCode: "M2X", MaterialName: "Frame alt", BOMLevel: 1, AltPart: "1"},
		{MaterialCode: "S1", MaterialName: "Screw", ParentCode: "M2", BOMLevel: 2},
	}
	snapshot.Materials = []entities.MaterialRecord{
		{Code: "P1", Name: "Pump", ProductFixedLeadTime: decimal.NewFromInt(3)},
		{Code: "M1", Name: "Motor", Attr: entities.AttrPurchased, PurchaseFixedLeadTime: decimal.NewFromInt(5)},
		{Code: "M2", Name: "Frame", ProductFixedLeadTime: decimal.NewFromInt(2)},
		{Code: "S1", Name: "Screw", Attr: entities.AttrOutsourced, PurchaseFixedLeadTime: decimal.NewFromInt(4)},
	}
	snapshot.PurchaseOrders = []entities.PurchaseOrder{
		{MaterialNumber: "S1", BillNo: "PO-1", BizTime: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), DeliverDate: "2025-05-20"},
	}
	snapshot.MRP["P1"] = []entities.MRPDemand{
		{MainMaterial: "M1", DemandQuantity: decimal.NewFromInt(-5)},
		{MainMaterial: "S1", DemandQuantity: decimal.NewFromInt(10)},
	}
	return memory.NewSupplyStore(snapshot)
}

func testRequest() GanttRequest {
	return GanttRequest{
		ProductCode:     "P1",
		ProductionStart: entities.MustParseDate("2025-06-01"),
		ProductionEnd:   entities.MustParseDate("2025-06-10"),
	}
}

func TestBuildGantt(t *testing.T) {
	svc := NewService(testStore(), Config{}, nil).WithClock(fixedNow)

	result, err := svc.BuildGantt(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run id")
	}
	if result.Root.MaterialName != "Pump" {
		t.Errorf("Expected root name from material master, got %q", result.Root.MaterialName)
	}
	if result.NodeCount != 4 || len(result.Bars) != 4 {
		t.Fatalf("Expected 4 nodes, got %d (%d bars)", result.NodeCount, len(result.Bars))
	}

	codes := []entities.MaterialCode{"P1", "M1", "M2", "S1"}
	for i, bar := range result.Bars {
		if bar.MaterialCode != codes[i] {
			t.Errorf("Bar %d: expected %s, got %s", i, codes[i], bar.MaterialCode)
		}
	}

	m1 := result.Bars[1]
	if m1.EndDate.String() != "2025-05-31" || m1.StartDate.String() != "2025-05-26" {
		t.Errorf("M1 window %s..%s", m1.StartDate, m1.EndDate)
	}
	if m1.Status != entities.OnTime || !m1.HasShortage || !m1.ShortageQuantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected M1 bar %+v", m1)
	}

	s1 := result.Bars[3]
	if s1.Status != entities.Ordered || s1.PODeliverDate == nil || *s1.PODeliverDate != "2025-05-20" {
		t.Errorf("Expected S1 ordered with deliver date, got %+v", s1)
	}

	if result.TimeRange.Start.String() != "2025-05-22" || result.TimeRange.End.String() != "2025-06-12" {
		t.Errorf("Unexpected time range %+v", result.TimeRange)
	}
	if result.Statistics.ShortageCount != 1 {
		t.Errorf("Expected 1 shortage, got %d", result.Statistics.ShortageCount)
	}
	if result.CriticalChain == nil || result.CriticalChain.BottleneckCode != "S1" {
		t.Errorf("Unexpected critical chain %+v", result.CriticalChain)
	}
	if result.Truncated || len(result.Warnings) != 0 {
		t.Errorf("Expected a complete tree, got warnings %v", result.Warnings)
	}

	rows := ShortageRows(result)
	if len(rows) != 1 || rows[0].MaterialCode != "M1" || rows[0].POStatus != "no_po" {
		t.Errorf("Unexpected shortage rows %+v", rows)
	}
}

func TestBuildGantt_NodeLimit(t *testing.T) {
	svc := NewService(testStore(), Config{NodeLimit: 2}, nil).WithClock(fixedNow)

	result, err := svc.BuildGantt(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Truncated || result.NodeCount != 2 || len(result.Warnings) != 1 {
		t.Errorf("Expected truncated 2-node tree, got %d nodes, truncated=%v", result.NodeCount, result.Truncated)
	}
}

func TestBuildGantt_InvalidRequest(t *testing.T) {
	svc := NewService(testStore(), Config{}, nil)

	tests := []struct {
		name string
		req  GanttRequest
	}{
		{"missing product", GanttRequest{ProductionStart: entities.MustParseDate("2025-06-01"), ProductionEnd: entities.MustParseDate("2025-06-10")}},
		{"missing dates", GanttRequest{ProductCode: "P1"}},
		{"end before start", GanttRequest{ProductCode: "P1", ProductionStart: entities.MustParseDate("2025-06-10"), ProductionEnd: entities.MustParseDate("2025-06-01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BuildGantt(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

// failingRepo fails the lookup named by failOn
type failingRepo struct {
	*memory.SupplyStore
	failOn string
	err    error
}

func (r *failingRepo) LoadBOMByProduct(ctx context.Context, code entities.MaterialCode) ([]entities.BOMEdge, error) {
	if r.failOn == "bom" {
		return nil, r.err
	}
	return r.SupplyStore.LoadBOMByProduct(ctx, code)
}

func (r *failingRepo) LoadMaterialsByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.MaterialRecord, error) {
	if r.failOn == "materials" {
		return nil, r.err
	}
	return r.SupplyStore.LoadMaterialsByCode(ctx, codes)
}

func (r *failingRepo) LoadPurchaseOrders(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseOrder, error) {
	if r.failOn == "purchase_orders" {
		return nil, r.err
	}
	return r.SupplyStore.LoadPurchaseOrders(ctx, codes)
}

func (r *failingRepo) GetMRPByProduct(ctx context.Context, code entities.MaterialCode) ([]entities.MRPDemand, error) {
	if r.failOn == "mrp" {
		return nil, r.err
	}
	return r.SupplyStore.GetMRPByProduct(ctx, code)
}

func (r *failingRepo) LoadInventoryByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.InventoryRecord, error) {
	if r.failOn == "inventory" {
		return nil, r.err
	}
	return r.SupplyStore.LoadInventoryByCode(ctx, codes)
}

func TestBuildGantt_FetchFailure(t *testing.T) {
	upstream := errors.New("connection refused")

	for _, source := range []string{"bom", "materials", "purchase_orders", "mrp"} {
		t.Run(source, func(t *testing.T) {
			repo := &failingRepo{SupplyStore: testStore(), failOn: source, err: upstream}
			svc := NewService(repo, Config{}, nil).WithClock(fixedNow)

			result, err := svc.BuildGantt(context.Background(), testRequest())
			if result != nil {
				t.Error("Expected no partial result")
			}
			if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, upstream) {
				t.Fatalf("Expected fetch failure wrapping the cause, got %v", err)
			}
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) || fetchErr.Source != source {
				t.Errorf("Expected FetchError from %s, got %v", source, err)
			}
		})
	}
}

func TestValidateBOM(t *testing.T) {
	svc := NewService(testStore(), Config{}, nil)

	result, err := svc.ValidateBOM(context.Background(), "P1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.EdgeCount != 3 || result.AlternateCount != 1 || !result.IsClean() {
		t.Errorf("Unexpected validation result %+v", result)
	}

	if _, err := svc.ValidateBOM(context.Background(), ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
}

func inventoryStore() *memory.SupplyStore {
	snapshot := repositories.NewSnapshot()
	snapshot.BOM["P1"] = []entities.BOMEdge{
		{MaterialCode: "M1", MaterialName: "Motor", BOMLevel: 1, Quantity: decimal.NewFromInt(2), AltGroupNo: "G1", AltPriority: entities.DefaultAltPriority},
		{MaterialCode: "M1B", MaterialName: "Motor B", BOMLevel: 1, AltPart: "1", Quantity: decimal.NewFromInt(2), AltGroupNo: "G1", AltPriority: 1},
		{MaterialCode: "S1", MaterialName: "Screw", ParentCode: "M1", BOMLevel: 2, Quantity: decimal.NewFromInt(8)},
	}
	snapshot.Materials = []entities.MaterialRecord{
		{Code: "P1", Name: "Pump"},
		{Code: "M1", Name: "Motor", Unit: "台"},
		{Code: "LONE", Name: "Spare part"},
	}
	snapshot.Inventory = []entities.InventoryRecord{
		{MaterialCode: "M1", Warehouse: "W1", BatchNo: "20250101", AvailableQty: decimal.NewFromInt(3), BaseQty: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(50)},
		{MaterialCode: "M1", Warehouse: "W2", BatchNo: "20250420", AvailableQty: decimal.NewFromInt(1), BaseQty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		{MaterialCode: "M1B", Warehouse: "W1", BatchNo: "20250420", AvailableQty: decimal.NewFromInt(5), BaseQty: decimal.NewFromInt(5)},
	}
	return memory.NewSupplyStore(snapshot)
}

func TestBuildInventoryTrees(t *testing.T) {
	svc := NewService(inventoryStore(), Config{}, nil).WithClock(fixedNow)

	result, err := svc.BuildInventoryTrees(context.Background(), TreeRequest{
		ProductCodes:       []entities.MaterialCode{"P1", "NOPE", "LONE"},
		IncludeSubstitutes: true,
		IncludeInventory:   true,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.RunID == "" {
		t.Error("Expected a run id")
	}
	if len(result.Trees) != 2 || result.Trees[0].ProductCode != "P1" || result.Trees[1].ProductCode != "LONE" {
		t.Fatalf("Expected trees for P1 and LONE in request order, got %+v", result.Trees)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "NOPE" {
		t.Errorf("Expected NOPE missing, got %v", result.Missing)
	}

	tree := result.Trees[0]
	if tree.ProductName != "Pump" || len(tree.Root.Children) != 1 {
		t.Fatalf("Unexpected tree %+v", tree.Root)
	}
	m1 := tree.Root.Children[0]
	// oldest batch 2025-01-01 is 120 days old on 2025-05-01
	if m1.StockStatus != entities.StockStagnant || m1.StorageDays != 120 {
		t.Errorf("Expected M1 stagnant at 120 days, got %s %d", m1.StockStatus, m1.StorageDays)
	}
	if !m1.AvailableStock.Equal(decimal.NewFromInt(4)) || !m1.CurrentStock.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected M1 stock summed over warehouses, got %s / %s", m1.AvailableStock, m1.CurrentStock)
	}
	if len(m1.Substitutes) != 1 || m1.Substitutes[0].Code != "M1B" || !m1.Substitutes[0].Recommended {
		t.Errorf("Expected M1B as the recommended substitute, got %+v", m1.Substitutes)
	}
	if m1.Unit != "台" || m1.Children[0].Unit != entities.DefaultUnit {
		t.Errorf("Unexpected units %q %q", m1.Unit, m1.Children[0].Unit)
	}
	if !tree.Statistics.TotalInventoryValue.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected inventory value 250, got %s", tree.Statistics.TotalInventoryValue)
	}
	if tree.Statistics.StagnantCount != 1 || tree.Statistics.InsufficientCount != 2 {
		t.Errorf("Unexpected statistics %+v", tree.Statistics)
	}

	lone := result.Trees[1]
	if lone.Statistics.TotalMaterials != 1 || len(lone.Root.Children) != 0 {
		t.Errorf("Expected a single-node tree for a product without BOM, got %+v", lone)
	}
}

func TestBuildInventoryTrees_WithoutInventory(t *testing.T) {
	repo := &failingRepo{SupplyStore: inventoryStore(), failOn: "inventory", err: errors.New("down")}
	svc := NewService(repo, Config{}, nil).WithClock(fixedNow)

	result, err := svc.BuildInventoryTrees(context.Background(), TreeRequest{ProductCodes: []entities.MaterialCode{"P1"}})
	if err != nil {
		t.Fatalf("Expected no stock lookup when inventory is excluded, got %v", err)
	}
	m1 := result.Trees[0].Root.Children[0]
	if m1.StockStatus != entities.StockUnknown || len(m1.Substitutes) != 0 {
		t.Errorf("Expected unknown stock and no substitutes, got %s %+v", m1.StockStatus, m1.Substitutes)
	}

	_, err = svc.BuildInventoryTrees(context.Background(), TreeRequest{ProductCodes: []entities.MaterialCode{"P1"}, IncludeInventory: true})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Source != "inventory" {
		t.Errorf("Expected inventory FetchError, got %v", err)
	}
}

func TestTreeRequest_Validate(t *testing.T) {
	many := make([]entities.MaterialCode, MaxTreeProducts+1)
	for i := range many {
		many[i] = "P"
	}

	tests := []struct {
		name  string
		codes []entities.MaterialCode
	}{
		{"empty", nil},
		{"blank code", []entities.MaterialCode{"P1", ""}},
		{"too many", many},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TreeRequest{ProductCodes: tt.codes}.Validate()
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}
