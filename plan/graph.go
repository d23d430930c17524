package plan

import (
	"fmt"
	"sort"
)

// CycleError reports a circular dependency found during topoSort.
type CycleError struct {
	Cycle []uint64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency in plan: %v", e.Cycle)
}

// topoSort orders graph's nodes so every node comes after the nodes it
// depends on (graph[node] lists node's own dependencies), using Kahn's
// algorithm with a sorted frontier so the result is deterministic.
func topoSort(graph map[uint64][]uint64) ([]uint64, error) {
	inDegree := make(map[uint64]int, len(graph))
	reverse := make(map[uint64][]uint64, len(graph))

	for node, deps := range graph {
		inDegree[node] = len(deps)
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], node)
		}
	}

	var queue []uint64
	for node, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, node)
		}
	}
	sortUint64s(queue)

	var result []uint64
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		dependents := append([]uint64(nil), reverse[node]...)
		sortUint64s(dependents)
		for _, dependent := range dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				sortUint64s(queue)
			}
		}
	}

	if len(result) != len(graph) {
		return nil, &CycleError{Cycle: findCycle(graph, inDegree)}
	}

	return result, nil
}

func sortUint64s(s []uint64) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// findCycle runs a DFS from any node still stuck with dependencies
// unresolved, for the cycle error's diagnostic path.
func findCycle(graph map[uint64][]uint64, inDegree map[uint64]int) []uint64 {
	var start uint64
	var found bool
	for node, degree := range inDegree {
		if degree > 0 {
			start, found = node, true
			break
		}
	}
	if !found {
		return nil
	}

	visited := make(map[uint64]bool)
	onPath := make(map[uint64]bool)
	var path []uint64

	var dfs func(node uint64) bool
	dfs = func(node uint64) bool {
		visited[node] = true
		onPath[node] = true
		path = append(path, node)

		for _, dep := range graph[node] {
			if !visited[dep] {
				if dfs(dep) {
					return true
				}
			} else if onPath[dep] {
				path = append(path, dep)
				return true
			}
		}

		onPath[node] = false
		path = path[:len(path)-1]
		return false
	}

	dfs(start)
	return path
}
