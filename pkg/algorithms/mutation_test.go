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

package algorithms_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
)

func TestMutatorCandidates(t *testing.T) {
	inst := sixVertexInstance(t)
	m := algorithms.NewMutator(inst.Graph, constraints.NewOracle(inst), 1, algorithms.MutationBest)

	testCases := []struct {
		name      string
		partition framework.Partition
		wantCount int
		wantFirst framework.Partition
	}{
		{
			name:      "Singletons",
			partition: singletons(6),
			wantCount: 12, // two directions per edge
			wantFirst: framework.Partition{{0, 1}, {2}, {3}, {4}, {5}},
		},
		{
			name:      "RepeatedMovesCollapse",
			partition: framework.Partition{{0, 1}, {2, 5}, {3}, {4}},
			wantCount: 8,
			wantFirst: framework.Partition{{0, 1, 2, 5}, {3}, {4}},
		},
		{
			name:      "SingleCluster",
			partition: framework.Partition{{0, 1, 2, 3, 4, 5}},
			wantCount: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			candidates := m.Candidates(tc.partition)
			if len(candidates) != tc.wantCount {
				t.Fatalf("Expected %d candidates, got %d: %v", tc.wantCount, len(candidates), candidates)
			}
			seen := map[string]bool{}
			for _, c := range candidates {
				if err := c.Validate(6); err != nil {
					t.Errorf("Invalid candidate %v: %v", c, err)
				}
				if len(c) != len(tc.partition)-1 {
					t.Errorf("Candidate %v should have %d clusters", c, len(tc.partition)-1)
				}
				if seen[c.Key()] {
					t.Errorf("Duplicate candidate %v", c)
				}
				seen[c.Key()] = true
			}
			if tc.wantCount > 0 {
				if diff := cmp.Diff(tc.wantFirst, candidates[0]); diff != "" {
					t.Errorf("First candidate mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestMutateBestNeverWorsens(t *testing.T) {
	inst := sixVertexInstance(t)
	oracle := constraints.NewOracle(inst)
	m := algorithms.NewMutator(inst.Graph, oracle, 1, algorithms.MutationBest)
	rng := rand.New(rand.NewSource(5))

	inputs := []framework.Partition{
		singletons(6),
		{{0, 1}, {2, 5}, {3}, {4}},
		{{0, 1, 2, 3, 4, 5}},
		{{0, 5}, {1}, {2}, {3}, {4}},
		{{3}, {1, 4}, {0}, {2, 5}},
	}
	for _, p := range inputs {
		before := oracle.Evaluate(p)
		got := m.Mutate(rng, p)
		if err := got.Validate(6); err != nil {
			t.Fatalf("Mutate(%v) returned invalid partition: %v", p, err)
		}
		after := oracle.Evaluate(got)
		if before.Less(after) {
			t.Errorf("Mutate(%v) worsened fitness from %v to %v", p, before, after)
		}
		if len(got) > len(p) {
			t.Errorf("Mutate(%v) added clusters: %v", p, got)
		}
	}

	// from all singletons a feasible merge always exists
	if got := m.Mutate(rng, singletons(6)); oracle.Evaluate(got) != framework.Feasible(5) {
		t.Errorf("Expected a feasible 5-cluster merge, got %v", got)
	}
}

func TestMutateProbability(t *testing.T) {
	inst := sixVertexInstance(t)
	rng := rand.New(rand.NewSource(9))
	p := framework.Partition{{0, 1}, {2, 5}, {3}, {4}}

	never := algorithms.NewMutator(inst.Graph, constraints.NewOracle(inst), 0, algorithms.MutationBest)
	for i := 0; i < 100; i++ {
		if diff := cmp.Diff(p, never.Mutate(rng, p)); diff != "" {
			t.Fatalf("Mutation with probability 0 changed the individual:\n%s", diff)
		}
	}

	always := algorithms.NewMutator(inst.Graph, algorithms.EvaluatorFunc(clusterCount), 1, algorithms.MutationRandom)
	for i := 0; i < 100; i++ {
		got := always.Mutate(rng, p)
		if len(got) != len(p)-1 {
			t.Fatalf("Random mutation should merge two clusters, got %v", got)
		}
		if err := got.Validate(6); err != nil {
			t.Fatalf("Random mutation returned invalid partition: %v", err)
		}
	}
	if diff := cmp.Diff(framework.Partition{{0, 1}, {2, 5}, {3}, {4}}, p); diff != "" {
		t.Errorf("Input modified (-want +got):\n%s", diff)
	}
}

func TestMutateSingleCluster(t *testing.T) {
	inst := sixVertexInstance(t)
	m := algorithms.NewMutator(inst.Graph, constraints.NewOracle(inst), 1, algorithms.MutationBest)
	p := framework.Partition{{0, 1, 2, 3, 4, 5}}
	if diff := cmp.Diff(p, m.Mutate(rand.New(rand.NewSource(1)), p)); diff != "" {
		t.Errorf("Single cluster changed (-want +got):\n%s", diff)
	}
}

func TestMutateRandomUniformOverMerges(t *testing.T) {
	// clusters {0,1} and {2} share two edges, {0,1} and {3} share one
	g, err := framework.NewGraph(4, []framework.Edge{
		{U: 0, V: 2, Cost: 1},
		{U: 1, V: 2, Cost: 1},
		{U: 1, V: 3, Cost: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := framework.Partition{{0, 1}, {2}, {3}}
	m := algorithms.NewMutator(g, algorithms.EvaluatorFunc(clusterCount), 1, algorithms.MutationRandom)

	const draws = 4000
	rng := rand.New(rand.NewSource(17))
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[m.Mutate(rng, p).Key()]++
	}

	if len(counts) != 4 {
		t.Fatalf("Expected 4 distinct merges, got %v", counts)
	}
	for key, n := range counts {
		if n < 850 || n > 1150 {
			t.Errorf("Merge %s drawn %d of %d times, want about a quarter", key, n, draws)
		}
	}
}
