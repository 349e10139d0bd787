package repositories

import (
	"fmt"
	"testing"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

func TestChunkCodes(t *testing.T) {
	codes := make([]entities.MaterialCode, 0, 120)
	for i := 0; i < 120; i++ {
		codes = append(codes, entities.MaterialCode(fmt.Sprintf("M%03d", i)))
	}

	chunks := ChunkCodes(codes, DefaultBatchSize)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 50 || len(chunks[1]) != 50 || len(chunks[2]) != 20 {
		t.Errorf("Unexpected chunk sizes: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[2][0] != "M100" {
		t.Errorf("Expected third chunk to start at M100, got %s", chunks[2][0])
	}

	if got := ChunkCodes(nil, 50); len(got) != 0 {
		t.Errorf("Expected no chunks for empty input, got %d", len(got))
	}
}

func TestUniqueCodes(t *testing.T) {
	got := UniqueCodes([]entities.MaterialCode{"B", "A", "", "B", "C", "A"})
	want := []entities.MaterialCode{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
