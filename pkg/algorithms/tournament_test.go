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
	"errors"
	"testing"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
)

func TestTournament(t *testing.T) {
	oracle := constraints.NewOracle(sixVertexInstance(t))

	testCases := []struct {
		name         string
		participants []framework.Partition
		wantIndex    int
		wantFitness  framework.Fitness
	}{
		{
			name: "FewestClustersWins",
			participants: []framework.Partition{
				singletons(6),
				{{0, 1}, {2, 5}, {3}, {4}},
				{{0, 1}, {2, 5, 4}, {3}},
			},
			wantIndex:   2,
			wantFitness: framework.Feasible(3),
		},
		{
			name: "InfeasibleNeverBeatsFeasible",
			participants: []framework.Partition{
				{{0, 1, 2, 3, 4, 5}},
				singletons(6),
			},
			wantIndex:   1,
			wantFitness: framework.Feasible(6),
		},
		{
			name: "TieKeepsEarliest",
			participants: []framework.Partition{
				{{0, 1}, {2, 5}, {3}, {4}},
				{{0}, {1, 4}, {2, 5}, {3}},
			},
			wantIndex:   0,
			wantFitness: framework.Feasible(4),
		},
		{
			name: "AllInfeasible",
			participants: []framework.Partition{
				{{0, 5}, {1}, {2}, {3}, {4}},
				{{0, 1, 2, 3, 4, 5}},
			},
			wantIndex:   0,
			wantFitness: framework.Infeasible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx, fitness, err := algorithms.TournamentIndex(tc.participants, oracle)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if idx != tc.wantIndex {
				t.Errorf("Expected winner %d, got %d", tc.wantIndex, idx)
			}
			if fitness != tc.wantFitness {
				t.Errorf("Expected fitness %v, got %v", tc.wantFitness, fitness)
			}
			for i, p := range tc.participants {
				if oracle.Evaluate(p).Less(fitness) {
					t.Errorf("Participant %d beats the winner", i)
				}
			}

			winner, err := algorithms.Tournament(tc.participants, oracle)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if winner.Key() != tc.participants[tc.wantIndex].Key() {
				t.Errorf("Tournament returned %v, want %v", winner, tc.participants[tc.wantIndex])
			}
		})
	}
}

func TestTournamentEmpty(t *testing.T) {
	_, err := algorithms.Tournament(nil, algorithms.EvaluatorFunc(clusterCount))
	if !errors.Is(err, algorithms.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}
