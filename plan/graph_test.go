package plan

import "testing"

func TestTopoSortOrdersDependenciesFirst(t *testing.T) {
	graph := map[uint64][]uint64{
		1: nil,
		2: {1},
		3: {2},
	}
	order, err := topoSort(graph)
	if err != nil {
		t.Fatalf("topoSort: %v", err)
	}
	pos := make(map[uint64]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos[1] > pos[2] || pos[2] > pos[3] {
		t.Fatalf("order = %v, want 1 before 2 before 3", order)
	}
}

func TestTopoSortIsDeterministic(t *testing.T) {
	graph := map[uint64][]uint64{
		10: nil,
		20: nil,
		30: {10, 20},
	}
	first, err := topoSort(graph)
	if err != nil {
		t.Fatalf("topoSort: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := topoSort(graph)
		if err != nil {
			t.Fatalf("topoSort: %v", err)
		}
		if len(got) != len(first) {
			t.Fatalf("order length changed across runs")
		}
		for j := range got {
			if got[j] != first[j] {
				t.Fatalf("topoSort not deterministic: %v vs %v", first, got)
			}
		}
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	graph := map[uint64][]uint64{
		1: {2},
		2: {1},
	}
	if _, err := topoSort(graph); err == nil {
		t.Fatal("expected a cycle error")
	}
}
