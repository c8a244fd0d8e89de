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

package benchmarks

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// ErrInvalidShape indicates instance dimensions no simple graph can have.
var ErrInvalidShape = errors.New("benchmarks: invalid instance shape")

// Shape describes an instance to generate: n vertices, m edges, bounds D and T.
type Shape struct {
	N, M    int
	MaxCost int64
	MaxSize int
}

// Name follows the instance_<n>_<m>_<D>_<T> convention.
func (s Shape) Name() string {
	return fmt.Sprintf("instance_%d_%d_%d_%d", s.N, s.M, s.MaxCost, s.MaxSize)
}

// StandardShapes are the dimensions of the reference experiment instances.
func StandardShapes() []Shape {
	return []Shape{
		{N: 20, M: 30, MaxCost: 20, MaxSize: 3},
		{N: 20, M: 100, MaxCost: 10, MaxSize: 5},
		{N: 50, M: 75, MaxCost: 50, MaxSize: 5},
		{N: 50, M: 750, MaxCost: 10, MaxSize: 5},
		{N: 100, M: 350, MaxCost: 50, MaxSize: 10},
		{N: 100, M: 1000, MaxCost: 25, MaxSize: 15},
		{N: 250, M: 3000, MaxCost: 20, MaxSize: 20},
		{N: 250, M: 7500, MaxCost: 10, MaxSize: 25},
		{N: 500, M: 2500, MaxCost: 50, MaxSize: 50},
		{N: 500, M: 10000, MaxCost: 15, MaxSize: 50},
		{N: 1000, M: 10000, MaxCost: 25, MaxSize: 50},
		{N: 1000, M: 50000, MaxCost: 10, MaxSize: 100},
	}
}

// RandomInstance generates a connected instance of the given shape. A random
// Hamiltonian chain guarantees connectivity; the remaining edges are drawn
// uniformly among the missing pairs. Edge costs are uniform in [1, maxWeight].
func RandomInstance(rng *rand.Rand, shape Shape, maxWeight int64) (*framework.Instance, error) {
	n, m := shape.N, shape.M
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one vertex, got %d", ErrInvalidShape, n)
	}
	if maxEdges := n * (n - 1) / 2; m < n-1 || m > maxEdges {
		return nil, fmt.Errorf("%w: %d edges for %d vertices, want [%d,%d]", ErrInvalidShape, m, n, n-1, maxEdges)
	}
	if maxWeight < 1 {
		return nil, fmt.Errorf("%w: max weight %d must be positive", ErrInvalidShape, maxWeight)
	}

	cost := func() int64 {
		return 1 + rng.Int63n(maxWeight)
	}
	type pair struct{ u, v int }
	key := func(u, v int) pair {
		if u > v {
			u, v = v, u
		}
		return pair{u, v}
	}

	edges := make([]framework.Edge, 0, m)
	used := make(map[pair]bool, m)
	order := rng.Perm(n)
	for i := 1; i < n; i++ {
		u, v := order[i-1], order[i]
		used[key(u, v)] = true
		edges = append(edges, framework.Edge{U: u, V: v, Cost: cost()})
	}

	if dense := m > n*(n-1)/4; dense {
		// enumerate the missing pairs and sample without replacement
		var missing []pair
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				if !used[pair{u, v}] {
					missing = append(missing, pair{u, v})
				}
			}
		}
		rng.Shuffle(len(missing), func(i, j int) { missing[i], missing[j] = missing[j], missing[i] })
		for _, p := range missing[:m-len(edges)] {
			edges = append(edges, framework.Edge{U: p.u, V: p.v, Cost: cost()})
		}
	} else {
		for len(edges) < m {
			u, v := rng.Intn(n), rng.Intn(n)
			if u == v || used[key(u, v)] {
				continue
			}
			used[key(u, v)] = true
			edges = append(edges, framework.Edge{U: u, V: v, Cost: cost()})
		}
	}

	g, err := framework.NewGraph(n, edges)
	if err != nil {
		return nil, err
	}
	return framework.NewInstance(shape.Name(), g, shape.MaxCost, shape.MaxSize)
}
