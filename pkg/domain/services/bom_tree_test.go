package services

import (
	"testing"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

func TestBuildBOMTree_GroupsByParent(t *testing.T) {
	edges := []entities.BOMEdge{
		{MaterialCode: "M2", ParentCode: "", BOMLevel: 1},
		{MaterialCode: "M1", ParentCode: "P1", BOMLevel: 1},
		{MaterialCode: "M1-ALT", ParentCode: "P1", BOMLevel: 1, AltPart: "1"},
		{MaterialCode: "M3", ParentCode: "M1", BOMLevel: 2},
		{MaterialCode: "M3", ParentCode: "M1", BOMLevel: 2},
	}

	tree := BuildBOMTree("P1", edges)

	rootChildren := tree.Children("P1")
	if len(rootChildren) != 2 {
		t.Fatalf("Expected 2 root children, got %d", len(rootChildren))
	}
	if rootChildren[0].MaterialCode != "M2" || rootChildren[1].MaterialCode != "M1" {
		t.Errorf("Expected input order [M2 M1], got [%s %s]", rootChildren[0].MaterialCode, rootChildren[1].MaterialCode)
	}
	if got := len(tree.Children("M1")); got != 2 {
		t.Errorf("Expected duplicate edges to be kept, got %d children of M1", got)
	}
	if tree.AlternateCount() != 1 {
		t.Errorf("Expected 1 alternate filtered, got %d", tree.AlternateCount())
	}
	if tree.EdgeCount() != 4 {
		t.Errorf("Expected 4 main edges, got %d", tree.EdgeCount())
	}
	if tree.HasChildren("M2") {
		t.Error("Expected M2 to be a leaf")
	}
}

func TestBOMTree_Codes(t *testing.T) {
	edges := []entities.BOMEdge{
		{MaterialCode: "A"},
		{MaterialCode: "B"},
		{MaterialCode: "C", ParentCode: "A"},
		{MaterialCode: "C", ParentCode: "B"},
		{MaterialCode: "A", ParentCode: "C"}, // cycle back
		{MaterialCode: "Z", ParentCode: "UNREACHABLE"},
	}

	codes := BuildBOMTree("P", edges).Codes()

	want := []entities.MaterialCode{"P", "A", "B", "C"}
	if len(codes) != len(want) {
		t.Fatalf("Expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], codes[i])
		}
	}
}

func TestBOMTree_SortedChildren(t *testing.T) {
	tree := BuildBOMTree("P", []entities.BOMEdge{
		{MaterialCode: "C"}, {MaterialCode: "A"}, {MaterialCode: "B"},
	})

	sorted := tree.SortedChildren("P")
	if sorted[0].MaterialCode != "A" || sorted[2].MaterialCode != "C" {
		t.Errorf("Expected sorted children, got %v", sorted)
	}
	if tree.Children("P")[0].MaterialCode != "C" {
		t.Error("SortedChildren must not reorder the tree")
	}
}

func TestSelectLatestVersion(t *testing.T) {
	tests := []struct {
		name  string
		edges []entities.BOMEdge
		want  int
	}{
		{
			name: "picks max version",
			edges: []entities.BOMEdge{
				{MaterialCode: "A", Version: "V1"},
				{MaterialCode: "B", Version: "V2"},
				{MaterialCode: "C", Version: "V2"},
				{MaterialCode: "D", Version: ""},
			},
			want: 2,
		},
		{
			name: "unversioned kept when nothing is versioned",
			edges: []entities.BOMEdge{
				{MaterialCode: "A"},
				{MaterialCode: "B"},
			},
			want: 2,
		},
		{
			name:  "empty input",
			edges: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(SelectLatestVersion(tt.edges)); got != tt.want {
				t.Errorf("Expected %d edges, got %d", tt.want, got)
			}
		})
	}
}
