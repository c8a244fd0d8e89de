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

// Package constraints implements the feasibility oracle: per-cluster
// predicates on size and spanning cost, and the scalar fitness derived from
// them.
package constraints

import (
	"math"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// SizeConstraint creates a constraint that rejects clusters with more than maxSize vertices.
func SizeConstraint(maxSize int) framework.Constraint {
	return func(c framework.Cluster) bool {
		return len(c) <= maxSize
	}
}

// ConnectivityCostConstraint creates a constraint that requires the cluster's
// induced subgraph to be connected with a minimum spanning tree costing at
// most maxCost. Singletons pass trivially.
func ConnectivityCostConstraint(g *framework.Graph, maxCost int64) framework.Constraint {
	return func(c framework.Cluster) bool {
		if len(c) <= 1 {
			return true
		}
		_, ok := spanningTreeCost(g, c, maxCost)
		return ok
	}
}

// CombineConstraints combines multiple constraints into one
func CombineConstraints(constraints ...framework.Constraint) framework.Constraint {
	return func(c framework.Cluster) bool {
		for _, constraint := range constraints {
			if !constraint(c) {
				return false
			}
		}
		return true
	}
}

// SpanningTreeCost returns the cost of a minimum spanning tree of the
// subgraph induced by c, and false when that subgraph is disconnected.
func SpanningTreeCost(g *framework.Graph, c framework.Cluster) (int64, bool) {
	return spanningTreeCost(g, c, math.MaxInt64)
}

// spanningTreeCost grows a tree with Prim's algorithm over the members of c,
// using only edges between members. ok is false when the subgraph is
// disconnected or the accumulated cost exceeds limit; costs are non-negative
// so the scan stops at the first overflow.
func spanningTreeCost(g *framework.Graph, c framework.Cluster, limit int64) (cost int64, ok bool) {
	k := len(c)
	if k <= 1 {
		return 0, true
	}

	inTree := make([]bool, k)
	reached := make([]bool, k)
	best := make([]int64, k)

	relax := func(j int) {
		for l := 0; l < k; l++ {
			if inTree[l] || !g.Adjacent(c[j], c[l]) {
				continue
			}
			w := g.Cost(c[j], c[l])
			if !reached[l] || w < best[l] {
				reached[l] = true
				best[l] = w
			}
		}
	}

	inTree[0] = true
	relax(0)

	for added := 1; added < k; added++ {
		next := -1
		for l := 0; l < k; l++ {
			if inTree[l] || !reached[l] {
				continue
			}
			if next == -1 || best[l] < best[next] {
				next = l
			}
		}
		if next == -1 {
			return cost, false
		}
		cost += best[next]
		if cost > limit {
			return cost, false
		}
		inTree[next] = true
		relax(next)
	}

	return cost, true
}
