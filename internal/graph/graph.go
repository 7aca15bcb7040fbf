// Package graph holds the in-memory task dependency graph used to validate
// edge insertions and answer reachability questions.
//
// Nodes are task ids mapped onto a dense arena; edges point from a task to
// the task it depends on. All traversals are iterative and track visited
// nodes, so they terminate on graphs that already contain a cycle.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("dependency would create a cycle")

// CycleError reports a rejected edge TaskID -> DependsOnID.
type CycleError struct {
	TaskID      uint64
	DependsOnID uint64
}

func (e *CycleError) Error() string {
	if e.TaskID == e.DependsOnID {
		return fmt.Sprintf("task %d cannot depend on itself", e.TaskID)
	}
	return fmt.Sprintf("circular dependency detected with task %d", e.DependsOnID)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// Edge means From depends on To.
type Edge struct {
	From uint64
	To   uint64
}

type Graph struct {
	index map[uint64]int
	ids   []uint64
	out   [][]int
	in    [][]int
}

// New builds a graph from an edge list. Duplicate edges are collapsed.
func New(edges []Edge) *Graph {
	g := &Graph{index: make(map[uint64]int)}
	for _, e := range edges {
		g.AddEdge(e)
	}
	return g
}

func (g *Graph) node(id uint64) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.index[id] = i
	g.ids = append(g.ids, id)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return i
}

// AddEdge inserts e without any validation.
func (g *Graph) AddEdge(e Edge) {
	from, to := g.node(e.From), g.node(e.To)
	for _, n := range g.out[from] {
		if n == to {
			return
		}
	}
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

// HasEdge reports whether From directly depends on To.
func (g *Graph) HasEdge(e Edge) bool {
	from, ok := g.index[e.From]
	if !ok {
		return false
	}
	to, ok := g.index[e.To]
	if !ok {
		return false
	}
	for _, n := range g.out[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Reachable reports whether target can be reached from start by following
// dependency edges.
func (g *Graph) Reachable(start, target uint64) bool {
	s, ok := g.index[start]
	if !ok {
		return false
	}
	t, ok := g.index[target]
	if !ok {
		return false
	}
	found := false
	g.walk(s, g.out, func(n int) bool {
		if n == t {
			found = true
			return false
		}
		return true
	})
	return found
}

// CheckEdge validates adding task -> dependsOn. The edge is rejected when it
// is a self edge or when task is already reachable from dependsOn.
func (g *Graph) CheckEdge(task, dependsOn uint64) error {
	if task == dependsOn || g.Reachable(dependsOn, task) {
		return &CycleError{TaskID: task, DependsOnID: dependsOn}
	}
	return nil
}

// Ancestors returns every task id transitively depended on by id, sorted.
func (g *Graph) Ancestors(id uint64) []uint64 {
	return g.collect(id, g.out)
}

// Descendants returns every task id that transitively depends on id, sorted.
func (g *Graph) Descendants(id uint64) []uint64 {
	return g.collect(id, g.in)
}

func (g *Graph) collect(id uint64, adj [][]int) []uint64 {
	start, ok := g.index[id]
	if !ok {
		return nil
	}
	var ids []uint64
	g.walk(start, adj, func(n int) bool {
		if n != start {
			ids = append(ids, g.ids[n])
		}
		return true
	})
	sortIDs(ids)
	return ids
}

// walk runs an iterative DFS from start over adj, calling visit once per
// reached node (start included). visit returning false stops the walk.
func (g *Graph) walk(start int, adj [][]int, visit func(int) bool) {
	visited := make([]bool, len(g.ids))
	stack := []int{start}
	visited[start] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(n) {
			return
		}
		for _, next := range adj[n] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
}

func sortIDs(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
