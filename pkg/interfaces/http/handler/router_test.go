package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/infrastructure/repositories/memory"
)

func testStore() *memory.SupplyStore {
	snapshot := repositories.NewSnapshot()
	snapshot.BOM["P1"] = []entities.BOMEdge{
		{MaterialCode: "M1", MaterialName: "Motor", BOMLevel: 1},
		{MaterialCode: "M2", MaterialName: "Frame", BOMLevel: 1},
	}
	snapshot.Materials = []entities.MaterialRecord{
		{Code: "M1", Name: "Motor", Attr: entities.AttrPurchased, PurchaseFixedLeadTime: decimal.NewFromInt(5)},
		{Code: "M2", Name: "Frame", ProductFixedLeadTime: decimal.NewFromInt(2)},
	}
	snapshot.MRP["P1"] = []entities.MRPDemand{
		{MainMaterial: "M1", DemandQuantity: decimal.NewFromInt(-5)},
	}
	snapshot.Inventory = []entities.InventoryRecord{
		{MaterialCode: "M1", Warehouse: "W1", BatchNo: "20250401", AvailableQty: decimal.NewFromInt(7), BaseQty: decimal.NewFromInt(7), UnitPrice: decimal.NewFromInt(2)},
	}
	return memory.NewSupplyStore(snapshot)
}

func testRouter(repo repositories.DataSource, checks ...ReadinessCheck) *gin.Engine {
	svc := gantt.NewService(repo, gantt.Config{}, nil).WithClock(func() time.Time {
		return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	})
	return NewRouter(svc, RouterConfig{
		Mode:      gin.TestMode,
		Build:     BuildInfo{Version: "1.2.3", BuildTime: "now"},
		Readiness: checks,
	}, nil)
}

func perform(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	router := testRouter(testStore())

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := perform(router, http.MethodGet, path, "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
			t.Errorf("%s: expected 200 ok, got %d %s", path, w.Code, w.Body.String())
		}
	}

	w := perform(router, http.MethodGet, "/version", "")
	if !strings.Contains(w.Body.String(), `"version":"1.2.3"`) {
		t.Errorf("Unexpected version body %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id header")
	}
}

func TestReadinessFailure(t *testing.T) {
	router := testRouter(testStore(), ReadinessCheck{
		Name: "redis",
		Ping: func(context.Context) error { return errors.New("connection refused") },
	})

	w := perform(router, http.MethodGet, "/health/ready", "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "redis") {
		t.Errorf("Expected 503 naming redis, got %d %s", w.Code, w.Body.String())
	}
}

func TestSchedule(t *testing.T) {
	router := testRouter(testStore())

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"ok", `{"product_code":"P1","production_start":"2025-06-01","production_end":"2025-06-10"}`, http.StatusOK},
		{"missing product", `{"production_start":"2025-06-01","production_end":"2025-06-10"}`, http.StatusBadRequest},
		{"bad date", `{"product_code":"P1","production_start":"June","production_end":"2025-06-10"}`, http.StatusBadRequest},
		{"end before start", `{"product_code":"P1","production_start":"2025-06-10","production_end":"2025-06-01"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/api/v1/gantt/schedule", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			resp := decode(t, w)
			if tt.wantCode == http.StatusOK {
				data := resp.Data.(map[string]interface{})
				if data["nodeCount"].(float64) != 3 {
					t.Errorf("Expected 3 nodes, got %v", data["nodeCount"])
				}
				root := data["root"].(map[string]interface{})
				if root["startDate"] != "2025-06-01" || len(root["children"].([]interface{})) != 2 {
					t.Errorf("Unexpected root %v", root)
				}
			} else if resp.Code != 40000 {
				t.Errorf("Expected code 40000, got %d", resp.Code)
			}
		})
	}
}

func TestFlat(t *testing.T) {
	router := testRouter(testStore())

	w := perform(router, http.MethodGet, "/api/v1/gantt/P1/flat?start=2025-06-01&end=2025-06-10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decode(t, w).Data.(map[string]interface{})
	rows := data["rows"].([]interface{})
	if len(rows) != 3 || data["total"].(float64) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	m1 := rows[1].(map[string]interface{})
	if m1["materialCode"] != "M1" || m1["poStatus"] != "no_po" || m1["hasShortage"] != true {
		t.Errorf("Unexpected M1 row %v", m1)
	}

	w = perform(router, http.MethodGet, "/api/v1/gantt/P1/flat?start=2025-06-01", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without end, got %d", w.Code)
	}
}

func TestShortageExports(t *testing.T) {
	router := testRouter(testStore())

	w := perform(router, http.MethodGet, "/api/v1/gantt/P1/shortages.csv?start=2025-06-01&end=2025-06-10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Unexpected content type %q", w.Header().Get("Content-Type"))
	}
	body := w.Body.String()
	if !strings.Contains(body, "material_code,material_name") || !strings.Contains(body, "M1,Motor,purchased,1,5,no_pr,no_po,5,2025-05-31") {
		t.Errorf("Unexpected CSV body %q", body)
	}

	w = perform(router, http.MethodGet, "/api/v1/gantt/P1/shortages.csv?start=2025-06-01&end=2025-06-10&encoding=latin1", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported encoding, got %d", w.Code)
	}

	w = perform(router, http.MethodGet, "/api/v1/gantt/P1/shortages.xlsx?start=2025-06-01&end=2025-06-10", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("Expected xlsx attachment, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "PK") {
		t.Error("Expected a zip container body")
	}
}

// unreachableRepo fails every lookup
type unreachableRepo struct{ *memory.SupplyStore }

func (unreachableRepo) LoadBOMByProduct(context.Context, entities.MaterialCode) ([]entities.BOMEdge, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestSchedule_FetchFailure(t *testing.T) {
	router := testRouter(unreachableRepo{testStore()})

	w := perform(router, http.MethodPost, "/api/v1/gantt/schedule",
		`{"product_code":"P1","production_start":"2025-06-01","production_end":"2025-06-10"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	data := resp.Data.(map[string]interface{})
	if resp.Code != 50200 || data["retryable"] != true || data["source"] != "bom" {
		t.Errorf("Unexpected error response %+v", resp)
	}
}

func TestForecast(t *testing.T) {
	router := testRouter(testStore())

	w := perform(router, http.MethodPost, "/api/v1/forecast",
		`{"history":[{"month":"2025-01","quantity":100},{"month":"2025-02","quantity":100},{"month":"2025-03","quantity":100}],"periods":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decode(t, w).Data.(map[string]interface{})
	values := data["values"].([]interface{})
	if len(values) != 2 || values[0].(float64) != 100 {
		t.Errorf("Unexpected forecast values %v", values)
	}

	w = perform(router, http.MethodPost, "/api/v1/forecast", `{"history":[{"month":"2025-01","quantity":1}]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short history, got %d", w.Code)
	}
}

func TestInventoryTree(t *testing.T) {
	router := testRouter(testStore())

	w := perform(router, http.MethodPost, "/api/v1/bom/tree", `{"product_codes":["P1","NOPE"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decode(t, w).Data.(map[string]interface{})
	trees := data["trees"].([]interface{})
	if len(trees) != 1 {
		t.Fatalf("Expected one tree, got %d", len(trees))
	}
	if missing := data["missing"].([]interface{}); len(missing) != 1 || missing[0] != "NOPE" {
		t.Errorf("Expected NOPE missing, got %v", missing)
	}

	tree := trees[0].(map[string]interface{})
	children := tree["root"].(map[string]interface{})["children"].([]interface{})
	m1 := children[0].(map[string]interface{})
	// 30 days old on 2025-05-01
	if m1["code"] != "M1" || m1["stockStatus"] != "sufficient" || m1["storageDays"].(float64) != 30 {
		t.Errorf("Unexpected M1 node %v", m1)
	}
	stats := tree["statistics"].(map[string]interface{})
	if stats["totalInventoryValue"] != "14" || stats["insufficientCount"].(float64) != 2 {
		t.Errorf("Unexpected statistics %v", stats)
	}

	w = perform(router, http.MethodPost, "/api/v1/bom/tree", `{"product_codes":["P1"],"include_inventory":false}`)
	data = decode(t, w).Data.(map[string]interface{})
	tree = data["trees"].([]interface{})[0].(map[string]interface{})
	m1 = tree["root"].(map[string]interface{})["children"].([]interface{})[0].(map[string]interface{})
	if m1["stockStatus"] != "unknown" {
		t.Errorf("Expected unknown stock when inventory is excluded, got %v", m1["stockStatus"])
	}

	for _, body := range []string{`{}`, `{"product_codes":[]}`, `{"product_codes":[" "]}`} {
		w = perform(router, http.MethodPost, "/api/v1/bom/tree", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestGanttHandler_NilLoggerOnFailure(t *testing.T) {
	svc := gantt.NewService(unreachableRepo{testStore()}, gantt.Config{}, nil)
	h := NewGanttHandler(svc, nil)

	router := gin.New()
	router.POST("/schedule", h.Schedule)
	router.POST("/tree", h.InventoryTree)

	w := perform(router, http.MethodPost, "/schedule",
		`{"product_code":"P1","production_start":"2025-06-01","production_end":"2025-06-10"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 from the schedule route, got %d: %s", w.Code, w.Body.String())
	}
	w = perform(router, http.MethodPost, "/tree", `{"product_codes":["P1"]}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 from the tree route, got %d: %s", w.Code, w.Body.String())
	}
}
