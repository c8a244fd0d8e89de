/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package framework

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for graph construction and partition validation.
var (
	// ErrVertexOutOfRange indicates a vertex id outside [0, n).
	ErrVertexOutOfRange = errors.New("framework: vertex out of range")

	// ErrSelfLoop indicates an edge whose endpoints coincide.
	ErrSelfLoop = errors.New("framework: self-loop not allowed")

	// ErrNegativeCost indicates an edge or matrix entry below zero.
	ErrNegativeCost = errors.New("framework: negative connection cost")

	// ErrNotSquare indicates a cost matrix whose rows differ in length from n.
	ErrNotSquare = errors.New("framework: cost matrix is not square")

	// ErrAsymmetric indicates cost[u][v] != cost[v][u].
	ErrAsymmetric = errors.New("framework: cost matrix is not symmetric")

	// ErrInvalidPartition indicates a partition that does not cover every vertex exactly once.
	ErrInvalidPartition = errors.New("framework: invalid partition")
)

// Edge is an undirected weighted connection between two vertices.
type Edge struct {
	U, V int
	Cost int64
}

// Graph is an immutable view of n vertices, their adjacency and the
// pairwise connection costs. Cost is 0 when no edge was recorded.
//
// A Graph is never mutated after construction, so it is safe to share
// between goroutines.
type Graph struct {
	n    int
	adj  [][]int
	cost [][]int64
}

// NewGraph builds a graph with n vertices from an undirected edge list.
// Parallel edges keep the cheaper cost.
func NewGraph(n int, edges []Edge) (*Graph, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative vertex count %d", ErrVertexOutOfRange, n)
	}
	g := newEmptyGraph(n)
	linked := make([][]bool, n)
	for i := range linked {
		linked[i] = make([]bool, n)
	}

	for _, e := range edges {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n {
			return nil, fmt.Errorf("%w: edge (%d,%d) with n=%d", ErrVertexOutOfRange, e.U, e.V, n)
		}
		if e.U == e.V {
			return nil, fmt.Errorf("%w: vertex %d", ErrSelfLoop, e.U)
		}
		if e.Cost < 0 {
			return nil, fmt.Errorf("%w: edge (%d,%d) cost %d", ErrNegativeCost, e.U, e.V, e.Cost)
		}
		if linked[e.U][e.V] {
			if e.Cost < g.cost[e.U][e.V] {
				g.cost[e.U][e.V] = e.Cost
				g.cost[e.V][e.U] = e.Cost
			}
			continue
		}
		linked[e.U][e.V] = true
		linked[e.V][e.U] = true
		g.cost[e.U][e.V] = e.Cost
		g.cost[e.V][e.U] = e.Cost
		g.adj[e.U] = append(g.adj[e.U], e.V)
		g.adj[e.V] = append(g.adj[e.V], e.U)
	}

	for v := range g.adj {
		sort.Ints(g.adj[v])
	}
	return g, nil
}

// NewGraphFromMatrix builds a graph from a symmetric cost matrix.
// Two vertices are adjacent iff their matrix entry is non-zero.
func NewGraphFromMatrix(matrix [][]int64) (*Graph, error) {
	n := len(matrix)
	g := newEmptyGraph(n)
	for u, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, u, len(row), n)
		}
	}
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			c := matrix[u][v]
			if c < 0 {
				return nil, fmt.Errorf("%w: entry (%d,%d) is %d", ErrNegativeCost, u, v, c)
			}
			if c != matrix[v][u] {
				return nil, fmt.Errorf("%w: entry (%d,%d)=%d but (%d,%d)=%d", ErrAsymmetric, u, v, c, v, u, matrix[v][u])
			}
			if c == 0 {
				continue
			}
			if u == v {
				return nil, fmt.Errorf("%w: vertex %d", ErrSelfLoop, u)
			}
			g.cost[u][v] = c
			g.adj[u] = append(g.adj[u], v)
		}
	}
	return g, nil
}

func newEmptyGraph(n int) *Graph {
	g := &Graph{
		n:    n,
		adj:  make([][]int, n),
		cost: make([][]int64, n),
	}
	for i := 0; i < n; i++ {
		g.cost[i] = make([]int64, n)
	}
	return g
}

// N returns the number of vertices.
func (g *Graph) N() int {
	return g.n
}

// Neighbors returns the neighbors of v in ascending order. The returned
// slice is owned by the graph and must not be modified.
func (g *Graph) Neighbors(v int) []int {
	return g.adj[v]
}

// Adjacent reports whether u and v share an edge.
func (g *Graph) Adjacent(u, v int) bool {
	// adjacency lists are sorted
	nbrs := g.adj[u]
	i := sort.SearchInts(nbrs, v)
	return i < len(nbrs) && nbrs[i] == v
}

// Cost returns the connection cost between u and v, 0 if none was recorded.
func (g *Graph) Cost(u, v int) int64 {
	return g.cost[u][v]
}

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v int) int {
	return len(g.adj[v])
}

// Edges lists every undirected edge once with U < V, ordered by U then V.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for u, nbrs := range g.adj {
		for _, v := range nbrs {
			if u < v {
				edges = append(edges, Edge{U: u, V: v, Cost: g.cost[u][v]})
			}
		}
	}
	return edges
}
