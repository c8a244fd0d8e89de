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

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// sixVertexInstance builds the 6-vertex example with D=4, T=3.
func sixVertexInstance(t *testing.T) *framework.Instance {
	t.Helper()
	g, err := framework.NewGraph(6, []framework.Edge{
		{U: 0, V: 1, Cost: 2},
		{U: 0, V: 2, Cost: 5},
		{U: 1, V: 3, Cost: 4},
		{U: 1, V: 4, Cost: 3},
		{U: 2, V: 5, Cost: 1},
		{U: 4, V: 5, Cost: 3},
	})
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	inst, err := framework.NewInstance("instance_6_6_4_3", g, 4, 3)
	if err != nil {
		t.Fatalf("building instance: %v", err)
	}
	return inst
}

func singletons(n int) framework.Partition {
	p := make(framework.Partition, n)
	for v := range p {
		p[v] = framework.Cluster{v}
	}
	return p
}

// clusterCount scores every partition by its cluster count, ignoring bounds.
func clusterCount(p framework.Partition) framework.Fitness {
	return framework.Feasible(len(p))
}
