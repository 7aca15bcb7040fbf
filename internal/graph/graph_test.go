package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEdge_SelfDependency(t *testing.T) {
	g := New(nil)

	err := g.CheckEdge(1, 1)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, uint64(1), cycleErr.TaskID)
	assert.True(t, errors.Is(err, ErrCycle))
	assert.Contains(t, err.Error(), "itself")
}

func TestCheckEdge_ReverseOfExistingEdge(t *testing.T) {
	g := New([]Edge{{From: 1, To: 2}})

	require.ErrorIs(t, g.CheckEdge(2, 1), ErrCycle)
	assert.NoError(t, g.CheckEdge(1, 3))
}

func TestCheckEdge_IndirectCycle(t *testing.T) {
	// A(1) -> B(2) -> C(3)
	g := New([]Edge{{From: 1, To: 2}, {From: 2, To: 3}})

	err := g.CheckEdge(3, 1)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, uint64(3), cycleErr.TaskID)
	assert.Equal(t, uint64(1), cycleErr.DependsOnID)
	assert.Contains(t, err.Error(), "task 1")
}

func TestCheckEdge_DiamondIsAllowed(t *testing.T) {
	g := New([]Edge{{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}})

	assert.NoError(t, g.CheckEdge(3, 4))
}

func TestReachable_TerminatesOnExistingCycle(t *testing.T) {
	// Rows inserted before validation existed may already form a loop.
	g := New([]Edge{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 1}})

	assert.True(t, g.Reachable(1, 3))
	assert.False(t, g.Reachable(1, 99))
	assert.Equal(t, []uint64{2, 3}, g.Ancestors(1))
}

func TestAncestorsAndDescendants(t *testing.T) {
	// 1 -> 2 -> 4, 1 -> 3 -> 4, 5 -> 1
	g := New([]Edge{{1, 2}, {2, 4}, {1, 3}, {3, 4}, {5, 1}})

	assert.Equal(t, []uint64{2, 3, 4}, g.Ancestors(1))
	assert.Equal(t, []uint64{1, 2, 3, 5}, g.Descendants(4))
	assert.Empty(t, g.Ancestors(4))
	assert.Nil(t, g.Descendants(42))
}

func TestAddEdge_CollapsesDuplicates(t *testing.T) {
	g := New(nil)
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 1, To: 2})

	assert.True(t, g.HasEdge(Edge{From: 1, To: 2}))
	assert.False(t, g.HasEdge(Edge{From: 2, To: 1}))
	assert.False(t, g.HasEdge(Edge{From: 7, To: 8}))
	assert.Equal(t, []uint64{1}, g.Descendants(2))
	assert.Len(t, g.in[g.index[2]], 1)
}

func TestCheckEdge_LongChain(t *testing.T) {
	edges := make([]Edge, 0, 5000)
	for i := uint64(1); i < 5000; i++ {
		edges = append(edges, Edge{From: i, To: i + 1})
	}
	g := New(edges)

	assert.ErrorIs(t, g.CheckEdge(5000, 1), ErrCycle)
	assert.NoError(t, g.CheckEdge(1, 5000))
}
