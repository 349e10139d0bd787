package entities

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyStock_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		days      int
		available string
		expected  StockStatus
	}{
		{"fresh", 0, "10", StockSufficient},
		{"just_below_warning", 59, "10", StockSufficient},
		{"warning_boundary", 60, "10", StockWarning},
		{"just_below_stagnant", 89, "10", StockWarning},
		{"stagnant_boundary", 90, "10", StockStagnant},
		{"very_old", 400, "0.5", StockStagnant},
		{"nothing_available", 10, "0", StockInsufficient},
		{"old_but_nothing_available", 120, "0", StockInsufficient},
		{"negative_available", 0, "-3", StockInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStock(tt.days, decimal.RequireFromString(tt.available))
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestInventoryRecord_StorageDays(t *testing.T) {
	today := NewDate(2025, 6, 1)

	tests := []struct {
		batch    string
		expected int
	}{
		{"20250601", 0},
		{"20250502-A7", 30},
		{"20250401LOT3", 61},
		{"20250302", 91},
		{"20250701-FUTURE", 0},
		{"LOT-0001", 0},
		{"2025", 0},
		{"", 0},
		{"20251340", 0},
	}

	for _, tt := range tests {
		t.Run(tt.batch, func(t *testing.T) {
			record := InventoryRecord{MaterialCode: "M1", BatchNo: tt.batch}
			if got := record.StorageDays(today); got != tt.expected {
				t.Errorf("Expected %d days, got %d", tt.expected, got)
			}
		})
	}
}

func TestStockLevel_StatusAndValue(t *testing.T) {
	level := StockLevel{
		MaterialCode:   "M1",
		CurrentStock:   decimal.NewFromInt(40),
		AvailableStock: decimal.NewFromInt(25),
		StorageDays:    75,
		UnitPrice:      decimal.RequireFromString("2.5"),
	}

	if level.Status() != StockWarning {
		t.Errorf("Expected warning, got %s", level.Status())
	}
	if !level.Value().Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected value 100, got %s", level.Value())
	}
}

func TestStockStatus_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]StockStatus{"s": StockStagnant})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"s":"stagnant"}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var back map[string]StockStatus
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back["s"] != StockStagnant {
		t.Errorf("Expected stagnant, got %s", back["s"])
	}

	var bad StockStatus
	if err := bad.UnmarshalText([]byte("plenty")); err == nil {
		t.Error("Expected error for unknown stock status")
	}
}

func TestBOMEdge_Usage(t *testing.T) {
	edge, err := NewBOMEdge("M1", "Bolt", "", 1, "")
	if err != nil {
		t.Fatalf("NewBOMEdge failed: %v", err)
	}
	if edge.AltPriority != DefaultAltPriority {
		t.Errorf("Expected default priority %d, got %d", DefaultAltPriority, edge.AltPriority)
	}
	if !edge.Usage().Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected usage 1 when quantity is unset, got %s", edge.Usage())
	}

	edge.Quantity = decimal.RequireFromString("2.5")
	if !edge.Usage().Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected usage 2.5, got %s", edge.Usage())
	}
}
