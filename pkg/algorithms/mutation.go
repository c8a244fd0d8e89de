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

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// MutationStrategy picks which merge candidate a mutation keeps.
type MutationStrategy string

const (
	// MutationBest keeps the candidate with the best fitness (hill climbing).
	MutationBest MutationStrategy = "best"
	// MutationRandom keeps a uniformly random candidate.
	MutationRandom MutationStrategy = "random"
)

// Mutator merges a cluster with a neighboring cluster. Every merge driven
// by a graph edge crossing two clusters is a candidate; the strategy decides
// which one is returned.
type Mutator struct {
	Probability float64
	Strategy    MutationStrategy

	graph     *framework.Graph
	evaluator Evaluator
}

// NewMutator creates a mutator. The evaluator is only consulted by MutationBest.
func NewMutator(g *framework.Graph, eval Evaluator, probability float64, strategy MutationStrategy) *Mutator {
	if strategy == "" {
		strategy = MutationBest
	}
	return &Mutator{
		Probability: probability,
		Strategy:    strategy,
		graph:       g,
		evaluator:   eval,
	}
}

// Mutate returns p unchanged when the draw exceeds the mutation probability
// or p is a single cluster; otherwise the candidate selected by the
// strategy. MutationRandom draws uniformly over distinct merges, so a pair
// of clusters joined by several edges is no more likely than one joined by
// a single edge. The result never has more clusters than p.
func (m *Mutator) Mutate(rng *rand.Rand, p framework.Partition) framework.Partition {
	if rng.Float64() > m.Probability {
		return p
	}
	if len(p) <= 1 {
		return p
	}

	candidates := m.Candidates(p)
	if len(candidates) == 0 {
		return p
	}

	switch m.Strategy {
	case MutationRandom:
		return candidates[rng.Intn(len(candidates))]
	default:
		// the unmutated individual competes first so ties keep it
		pool := make([]framework.Partition, 0, len(candidates)+1)
		pool = append(pool, p)
		pool = append(pool, candidates...)
		idx, _, _ := TournamentIndex(pool, m.evaluator)
		return pool[idx]
	}
}

// Candidates lists, in generation order, every partition obtained from p by
// merging a cluster into cluster i where some vertex of i has a neighbor in
// that cluster. The absorbing cluster keeps its position and its vertices
// come first. A given pair of clusters yields one candidate.
func (m *Mutator) Candidates(p framework.Partition) []framework.Partition {
	assign := p.Assignment(m.graph.N())
	seen := make(map[[2]int]bool)

	var candidates []framework.Partition
	for ci, c := range p {
		for _, v := range c {
			for _, nbr := range m.graph.Neighbors(v) {
				cj := assign[nbr]
				if cj == ci || cj < 0 {
					continue
				}
				move := [2]int{ci, cj}
				if seen[move] {
					continue
				}
				seen[move] = true
				candidates = append(candidates, merge(p, ci, cj))
			}
		}
	}
	return candidates
}

// merge copies p with cluster src appended to cluster dst and src dropped.
func merge(p framework.Partition, dst, src int) framework.Partition {
	out := make(framework.Partition, 0, len(p)-1)
	for i, c := range p {
		switch i {
		case src:
			continue
		case dst:
			merged := make(framework.Cluster, 0, len(c)+len(p[src]))
			merged = append(merged, c...)
			merged = append(merged, p[src]...)
			out = append(out, merged)
		default:
			out = append(out, c.Clone())
		}
	}
	return out
}
