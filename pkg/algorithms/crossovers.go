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

package algorithms

import (
	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// CrossoverFunc recombines two parents into two children. Children must be
// valid partitions that share no structure with the parents.
type CrossoverFunc func(rng *rand.Rand, parent1, parent2 framework.Partition) (child1, child2 framework.Partition)

// NewAdjacencyCrossover binds AdjacencyCrossover to a graph.
func NewAdjacencyCrossover(g *framework.Graph) CrossoverFunc {
	return func(rng *rand.Rand, parent1, parent2 framework.Partition) (framework.Partition, framework.Partition) {
		return AdjacencyCrossover(rng, g, parent1, parent2)
	}
}

// AdjacencyCrossover exchanges whole clusters between parents. A random
// cluster C1 of parent1 is paired with the first cluster C2 of parent2 that
// holds a neighbor of some C1 vertex; child1 is parent1 with C2 moved in as a
// block, child2 is parent2 with C1 moved in. When either parent is a single
// cluster or no adjacent C2 exists the parents are returned as copies.
func AdjacencyCrossover(rng *rand.Rand, g *framework.Graph, parent1, parent2 framework.Partition) (framework.Partition, framework.Partition) {
	if len(parent1) <= 1 || len(parent2) <= 1 {
		return parent1.Clone(), parent2.Clone()
	}

	c1 := parent1[rng.Intn(len(parent1))]
	c2 := firstAdjacentCluster(g, parent2, c1)
	if c2 == nil {
		return parent1.Clone(), parent2.Clone()
	}

	return transplant(parent1, c2), transplant(parent2, c1)
}

// firstAdjacentCluster scans target's clusters, their vertices, then the
// vertices of source, and returns the first cluster holding a neighbor of
// source. The nesting order fixes which cluster wins.
func firstAdjacentCluster(g *framework.Graph, target framework.Partition, source framework.Cluster) framework.Cluster {
	for _, cluster := range target {
		for _, v := range cluster {
			for _, u := range source {
				if g.Adjacent(u, v) {
					return cluster
				}
			}
		}
	}
	return nil
}

// transplant copies p, removes every vertex of block from it, drops clusters
// left empty and appends a copy of block as a new cluster.
func transplant(p framework.Partition, block framework.Cluster) framework.Partition {
	moved := sets.New[int](block...)

	out := make(framework.Partition, 0, len(p)+1)
	for _, c := range p {
		kept := make(framework.Cluster, 0, len(c))
		for _, v := range c {
			if !moved.Has(v) {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return append(out, block.Clone())
}
