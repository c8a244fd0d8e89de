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

package framework_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

func TestPartitionValidate(t *testing.T) {
	testCases := []struct {
		name      string
		partition framework.Partition
		n         int
		wantErr   bool
	}{
		{
			name:      "Valid",
			partition: framework.Partition{{0, 1}, {2, 5}, {3}, {4}},
			n:         6,
		},
		{
			name:      "MissingVertex",
			partition: framework.Partition{{0, 1}, {2}},
			n:         4,
			wantErr:   true,
		},
		{
			name:      "DuplicateVertex",
			partition: framework.Partition{{0, 1}, {1, 2}},
			n:         3,
			wantErr:   true,
		},
		{
			name:      "EmptyCluster",
			partition: framework.Partition{{0, 1}, {}, {2}},
			n:         3,
			wantErr:   true,
		},
		{
			name:      "OutOfRange",
			partition: framework.Partition{{0, 1, 3}},
			n:         3,
			wantErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.partition.Validate(tc.n)
			if tc.wantErr {
				if !errors.Is(err, framework.ErrInvalidPartition) {
					t.Errorf("Expected ErrInvalidPartition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected valid partition, got %v", err)
			}
		})
	}
}

func TestPartitionCloneIsIndependent(t *testing.T) {
	p := framework.Partition{{0, 1}, {2}}
	c := p.Clone()
	c[0][0] = 9
	c[1] = append(c[1], 7)

	if p[0][0] != 0 || len(p[1]) != 1 {
		t.Errorf("Clone shares structure with the original: %v", p)
	}
	if p.Key() == c.Key() {
		t.Errorf("Expected different keys after modifying the clone")
	}
}

func TestPartitionIndexOfAndAssignment(t *testing.T) {
	p := framework.Partition{{3, 0}, {2}, {1}}
	if got := p.IndexOf(0); got != 0 {
		t.Errorf("Expected vertex 0 in cluster 0, got %d", got)
	}
	if got := p.IndexOf(4); got != -1 {
		t.Errorf("Expected -1 for missing vertex, got %d", got)
	}

	assign := p.Assignment(5)
	want := []int{0, 2, 1, 0, -1}
	for v := range want {
		if assign[v] != want[v] {
			t.Errorf("Assignment[%d] = %d, want %d", v, assign[v], want[v])
		}
	}
}

func TestFitnessOrder(t *testing.T) {
	testCases := []struct {
		name string
		a, b framework.Fitness
		less bool
	}{
		{name: "FewerClusters", a: framework.Feasible(2), b: framework.Feasible(3), less: true},
		{name: "MoreClusters", a: framework.Feasible(3), b: framework.Feasible(2), less: false},
		{name: "EqualFeasible", a: framework.Feasible(3), b: framework.Feasible(3), less: false},
		{name: "FeasibleBeatsInfeasible", a: framework.Feasible(100), b: framework.Infeasible, less: true},
		{name: "InfeasibleNeverLess", a: framework.Infeasible, b: framework.Feasible(1), less: false},
		{name: "InfeasibleEqual", a: framework.Infeasible, b: framework.Infeasible, less: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Less(tc.b); got != tc.less {
				t.Errorf("%v.Less(%v) = %v, want %v", tc.a, tc.b, got, tc.less)
			}
		})
	}

	if framework.Infeasible != (framework.Fitness{}) {
		t.Errorf("Expected the zero value to be the infeasible sentinel")
	}
}

func TestFitnessJSON(t *testing.T) {
	out, err := json.Marshal(map[string]framework.Fitness{"a": framework.Feasible(4), "b": framework.Infeasible})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"a":4,"b":"inf"}` {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestNewInstance(t *testing.T) {
	g, err := framework.NewGraph(2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := framework.NewInstance("x", g, 4, 0); !errors.Is(err, framework.ErrInvalidInstance) {
		t.Errorf("Expected ErrInvalidInstance for T=0, got %v", err)
	}
	if _, err := framework.NewInstance("x", nil, 4, 3); !errors.Is(err, framework.ErrInvalidInstance) {
		t.Errorf("Expected ErrInvalidInstance for nil graph, got %v", err)
	}
	inst, err := framework.NewInstance("x", g, 4, 3)
	if err != nil || inst.MaxCost != 4 || inst.MaxSize != 3 {
		t.Errorf("unexpected instance %+v, err %v", inst, err)
	}
}
