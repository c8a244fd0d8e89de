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

package warmstart_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
	"github.com/mihai-snyk/gapartition/pkg/warmstart"
)

func pathGraph(t *testing.T, n int) *framework.Graph {
	t.Helper()
	edges := make([]framework.Edge, 0, n-1)
	for v := 0; v+1 < n; v++ {
		edges = append(edges, framework.Edge{U: v, V: v + 1, Cost: int64(v + 1)})
	}
	g, err := framework.NewGraph(n, edges)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	return g
}

func TestAgglomerativeGenerate(t *testing.T) {
	g := pathGraph(t, 10)
	seeder, err := warmstart.NewAgglomerative(warmstart.AgglomerativeConfig{Graph: g, Seed: 3})
	if err != nil {
		t.Fatalf("NewAgglomerative: %v", err)
	}

	population, err := seeder.Generate(30)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(population) != 30 {
		t.Fatalf("Expected 30 partitions, got %d", len(population))
	}

	seen := map[string]bool{}
	for i, p := range population {
		if err := p.Validate(10); err != nil {
			t.Errorf("Partition %d invalid: %v", i, err)
		}
		// ceil(0.7*10) = 7
		if len(p) < 7 || len(p) > 10 {
			t.Errorf("Partition %d has %d clusters, want [7,10]", i, len(p))
		}
		for ci := 1; ci < len(p); ci++ {
			if p[ci-1][0] > p[ci][0] {
				t.Errorf("Partition %d clusters not ordered by smallest vertex: %v", i, p)
			}
		}
		for _, c := range p {
			for j := 1; j < len(c); j++ {
				if c[j-1] > c[j] {
					t.Errorf("Partition %d cluster not ascending: %v", i, c)
				}
			}
		}
		if seen[p.Key()] {
			t.Errorf("Partition %d is a duplicate: %v", i, p)
		}
		seen[p.Key()] = true
	}
}

func TestAgglomerativeDeterministic(t *testing.T) {
	g := pathGraph(t, 8)
	generate := func() []framework.Partition {
		seeder, err := warmstart.NewAgglomerative(warmstart.AgglomerativeConfig{Graph: g, Seed: 99})
		if err != nil {
			t.Fatalf("NewAgglomerative: %v", err)
		}
		population, err := seeder.Generate(10)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return population
	}
	if diff := cmp.Diff(generate(), generate()); diff != "" {
		t.Errorf("Same seed produced different populations (-first +second):\n%s", diff)
	}
}

func TestAgglomerativePadsWhenExhausted(t *testing.T) {
	g, err := framework.NewGraph(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	seeder, err := warmstart.NewAgglomerative(warmstart.AgglomerativeConfig{Graph: g, MaxRetries: 5})
	if err != nil {
		t.Fatalf("NewAgglomerative: %v", err)
	}
	population, err := seeder.Generate(4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []framework.Partition{{{0}, {1}}, {{0}, {1}}, {{0}, {1}}, {{0}, {1}}}
	if diff := cmp.Diff(want, population); diff != "" {
		t.Errorf("Unexpected padding (-want +got):\n%s", diff)
	}
	population[1][0][0] = 1
	if population[0][0][0] != 0 {
		t.Errorf("Padded partitions share storage")
	}
}

func TestAgglomerativeIncludeSingletons(t *testing.T) {
	g := pathGraph(t, 5)
	seeder, err := warmstart.NewAgglomerative(warmstart.AgglomerativeConfig{Graph: g, IncludeSingletons: true, Seed: 1})
	if err != nil {
		t.Fatalf("NewAgglomerative: %v", err)
	}
	population, err := seeder.Generate(3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff(warmstart.Singletons(5), population[0]); diff != "" {
		t.Errorf("First individual is not the singleton baseline (-want +got):\n%s", diff)
	}
}

func TestAgglomerativeRespectsConstraint(t *testing.T) {
	g, err := framework.NewGraph(6, []framework.Edge{
		{U: 0, V: 1, Cost: 2},
		{U: 0, V: 2, Cost: 5},
		{U: 1, V: 3, Cost: 4},
		{U: 1, V: 4, Cost: 3},
		{U: 2, V: 5, Cost: 1},
		{U: 4, V: 5, Cost: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := framework.NewInstance("instance_6_6_4_3", g, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	oracle := constraints.NewOracle(inst)

	seeder, err := warmstart.NewAgglomerative(warmstart.AgglomerativeConfig{
		Graph:           g,
		MinClusterRatio: 0.1,
		Constraint: constraints.CombineConstraints(
			constraints.SizeConstraint(inst.MaxSize),
			constraints.ConnectivityCostConstraint(g, inst.MaxCost),
		),
		Seed: 5,
	})
	if err != nil {
		t.Fatalf("NewAgglomerative: %v", err)
	}
	population, err := seeder.Generate(25)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, p := range population {
		if !oracle.IsFeasible(p) {
			t.Errorf("Seeded partition %v is infeasible", p)
		}
	}
}

func TestNewAgglomerativeErrors(t *testing.T) {
	g := pathGraph(t, 3)
	testCases := []struct {
		name   string
		config warmstart.AgglomerativeConfig
	}{
		{name: "NilGraph", config: warmstart.AgglomerativeConfig{}},
		{name: "EmptyWeightRange", config: warmstart.AgglomerativeConfig{Graph: g, MinWeight: 5, MaxWeight: 2}},
		{name: "RatioAboveOne", config: warmstart.AgglomerativeConfig{Graph: g, MinClusterRatio: 1.5}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := warmstart.NewAgglomerative(tc.config); !errors.Is(err, warmstart.ErrInvalidSeeding) {
				t.Errorf("Expected ErrInvalidSeeding, got %v", err)
			}
		})
	}
}
