package csv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	testBOM = `product_code,material_code,material_name,parent_material_code,bom_level,alt_part,bom_version
P1,M1,Motor,,1,,V1
P1,M2,Shaft,M1,2,,V1
P1,M2B,Shaft alt,M1,2,1,V1
P2,X1,Frame,,1,,
`
	testMaterials = `material_code,material_name,materialattr,purchase_fixedleadtime,product_fixedleadtime
M1,Motor,自制,,4
M2,Shaft,外购,5,
M3,Bad,外购,abc,
`
	testPOs = `material_number,billno,biztime,deliverdate
M2,PO-1,2025-05-01,2025-05-28
M2,PO-2,2025-05-01 10:30:00,2025-06-02
`
	testMRP = `product_code,main_material,material_demand_quantity
P1,M2,-5
P1,M1,oops
`
)

func writeScenario(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadScenario(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		BOMFile:            testBOM,
		MaterialsFile:      "\ufeff" + testMaterials,
		PurchaseOrdersFile: testPOs,
		MRPFile:            testMRP,
	})

	snapshot, err := NewLoader().LoadScenario(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snapshot.BOM["P1"]) != 3 || len(snapshot.BOM["P2"]) != 1 {
		t.Errorf("Unexpected BOM grouping: P1=%d P2=%d", len(snapshot.BOM["P1"]), len(snapshot.BOM["P2"]))
	}
	if !snapshot.BOM["P1"][2].IsAlternate() {
		t.Error("Expected third P1 edge to be an alternate")
	}
	if snapshot.BOM["P1"][1].ParentCode != "M1" || snapshot.BOM["P1"][1].BOMLevel != 2 {
		t.Errorf("Unexpected edge %+v", snapshot.BOM["P1"][1])
	}

	if len(snapshot.Materials) != 3 {
		t.Fatalf("Expected 3 materials, got %d", len(snapshot.Materials))
	}
	if snapshot.Materials[0].Code != "M1" {
		t.Errorf("Expected UTF-8 BOM to be stripped, got code %q", snapshot.Materials[0].Code)
	}
	if !snapshot.Materials[2].PurchaseFixedLeadTime.IsZero() {
		t.Error("Expected malformed lead time to default to zero")
	}

	if len(snapshot.PurchaseRequests) != 0 {
		t.Errorf("Expected no PRs for a missing file, got %d", len(snapshot.PurchaseRequests))
	}
	if len(snapshot.PurchaseOrders) != 2 || snapshot.PurchaseOrders[1].BizTime.Hour() != 10 {
		t.Errorf("Unexpected purchase orders %+v", snapshot.PurchaseOrders)
	}

	mrp := snapshot.MRP["P1"]
	if len(mrp) != 2 || mrp[0].DemandQuantity.IntPart() != -5 || !mrp[1].DemandQuantity.IsZero() {
		t.Errorf("Unexpected MRP rows %+v", mrp)
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing bom",
			files:   map[string]string{MaterialsFile: testMaterials},
			wantErr: "failed to open BOM file",
		},
		{
			name: "header mismatch",
			files: map[string]string{
				BOMFile:       "parent,child\nP1,M1\n",
				MaterialsFile: testMaterials,
			},
			wantErr: "header mismatch",
		},
		{
			name: "column count",
			files: map[string]string{
				BOMFile:       testBOM + "P1,M9\n",
				MaterialsFile: testMaterials,
			},
			wantErr: "row 6",
		},
		{
			name: "bad level",
			files: map[string]string{
				BOMFile:       strings.Replace(testBOM, "M1,Motor,,1", "M1,Motor,,one", 1),
				MaterialsFile: testMaterials,
			},
			wantErr: "invalid bom_level",
		},
		{
			name: "bad biztime",
			files: map[string]string{
				BOMFile:            testBOM,
				MaterialsFile:      testMaterials,
				PurchaseOrdersFile: "material_number,billno,biztime,deliverdate\nM2,PO-1,yesterday,2025-05-28\n",
			},
			wantErr: "invalid biztime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadScenario(writeScenario(t, tt.files))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMaterials_GBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(testMaterials)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	dir := writeScenario(t, map[string]string{MaterialsFile: encoded})

	materials, err := NewLoaderWithEncoding(GBK).LoadMaterials(filepath.Join(dir, MaterialsFile))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if materials[1].Attr != "外购" {
		t.Errorf("Expected decoded attribute 外购, got %q", materials[1].Attr)
	}
}

func TestLoadMRP_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadMRP(filepath.Join(t.TempDir(), MRPFile))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"": UTF8, "UTF-8": UTF8, "gbk": GBK, "GB2312": GBK} {
		got, err := ParseEncoding(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseEncoding("latin1"); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}

func TestWriteScenario_LoadsBack(t *testing.T) {
	for _, encoding := range []Encoding{UTF8, GBK} {
		t.Run(string(encoding), func(t *testing.T) {
			source := writeScenario(t, map[string]string{
				BOMFile:            testBOM,
				MaterialsFile:      testMaterials,
				PurchaseOrdersFile: testPOs,
				MRPFile:            testMRP,
			})
			snapshot, err := NewLoader().LoadScenario(source)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			dir := filepath.Join(t.TempDir(), "out")
			if err := NewWriter(encoding).WriteScenario(dir, snapshot); err != nil {
				t.Fatalf("WriteScenario: %v", err)
			}

			reloaded, err := NewLoaderWithEncoding(encoding).LoadScenario(dir)
			if err != nil {
				t.Fatalf("Reload: %v", err)
			}
			if len(reloaded.BOM["P1"]) != 3 || reloaded.BOM["P1"][2].AltPart != "1" {
				t.Errorf("Unexpected BOM after reload %+v", reloaded.BOM["P1"])
			}
			if reloaded.Materials[0].Attr != "自制" || !reloaded.Materials[1].PurchaseFixedLeadTime.Equal(snapshot.Materials[1].PurchaseFixedLeadTime) {
				t.Errorf("Unexpected materials after reload %+v", reloaded.Materials)
			}
			if !reloaded.PurchaseOrders[1].BizTime.Equal(snapshot.PurchaseOrders[1].BizTime) {
				t.Errorf("Expected biztime %s, got %s", snapshot.PurchaseOrders[1].BizTime, reloaded.PurchaseOrders[1].BizTime)
			}
			if len(reloaded.MRP["P1"]) != 2 {
				t.Errorf("Unexpected MRP after reload %+v", reloaded.MRP)
			}
			if len(reloaded.Inventory) != 0 {
				t.Errorf("Expected an empty inventory file, got %+v", reloaded.Inventory)
			}
		})
	}
}

func TestLoadScenario_InventoryAndOptionalColumns(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		BOMFile: `product_code,material_code,material_name,parent_material_code,bom_level,alt_part,bom_version,quantity,alt_group_no,alt_priority
P1,M1,Motor,,1,,V1,2,,
P1,M2,Shaft,M1,2,,V1,0.5,G1,
P1,M2B,Shaft alt,M1,2,1,V1,1,G1,2
`,
		MaterialsFile: `material_code,material_name,materialattr,purchase_fixedleadtime,product_fixedleadtime,baseunit_name
M1,Motor,自制,,4,台
`,
		InventoryFile: `material_code,warehouse,batch_no,available_base_qty,base_qty,unit_price
M2,W1,20250301-01,10,12,1.5
M2,W2,,x,3,
`,
	})

	snapshot, err := NewLoader().LoadScenario(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	edges := snapshot.BOM["P1"]
	if edges[0].Quantity.String() != "2" || edges[1].Quantity.String() != "0.5" {
		t.Errorf("Unexpected quantities %s %s", edges[0].Quantity, edges[1].Quantity)
	}
	if edges[1].AltGroupNo != "G1" || edges[1].AltPriority != 999 || edges[2].AltPriority != 2 {
		t.Errorf("Unexpected alternate fields %+v", edges)
	}
	if snapshot.Materials[0].Unit != "台" || !snapshot.Materials[0].MinOrderQty.IsZero() {
		t.Errorf("Expected unit and blank moq, got %+v", snapshot.Materials[0])
	}

	if len(snapshot.Inventory) != 2 {
		t.Fatalf("Expected 2 stock lines, got %d", len(snapshot.Inventory))
	}
	first := snapshot.Inventory[0]
	if first.Warehouse != "W1" || first.BatchNo != "20250301-01" || first.UnitPrice.String() != "1.5" {
		t.Errorf("Unexpected stock line %+v", first)
	}
	if !snapshot.Inventory[1].AvailableQty.IsZero() {
		t.Error("Expected malformed quantity to default to zero")
	}

	// the original seven-column BOM still loads with default priorities
	legacy, err := NewLoader().LoadBOM(filepath.Join(writeScenario(t, map[string]string{BOMFile: testBOM}), BOMFile))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if legacy["P1"][0].AltPriority != 999 || !legacy["P1"][0].Quantity.IsZero() {
		t.Errorf("Unexpected legacy edge %+v", legacy["P1"][0])
	}

	if _, err := NewLoader().LoadInventory(filepath.Join(t.TempDir(), InventoryFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist for a missing inventory file, got %v", err)
	}
}
