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

package constraints

import (
	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// Oracle decides feasibility of partitions for one instance and derives
// their fitness. It holds no mutable state and is safe for concurrent use.
type Oracle struct {
	instance   *framework.Instance
	constraint framework.Constraint
}

// NewOracle builds the oracle for an instance: clusters must hold at most
// MaxSize vertices and span with cost at most MaxCost. The size check runs
// first since it is the cheapest.
func NewOracle(inst *framework.Instance) *Oracle {
	return &Oracle{
		instance: inst,
		constraint: CombineConstraints(
			SizeConstraint(inst.MaxSize),
			ConnectivityCostConstraint(inst.Graph, inst.MaxCost),
		),
	}
}

// Instance returns the instance the oracle evaluates against.
func (o *Oracle) Instance() *framework.Instance {
	return o.instance
}

// IsFeasible reports whether every cluster of p satisfies the constraints.
// Scanning stops at the first violating cluster.
func (o *Oracle) IsFeasible(p framework.Partition) bool {
	for _, c := range p {
		if !o.constraint(c) {
			return false
		}
	}
	return true
}

// Evaluate returns the cluster count of p when feasible, framework.Infeasible otherwise.
func (o *Oracle) Evaluate(p framework.Partition) framework.Fitness {
	if !o.IsFeasible(p) {
		return framework.Infeasible
	}
	return framework.Feasible(len(p))
}

// Constraint returns the combined per-cluster predicate.
func (o *Oracle) Constraint() framework.Constraint {
	return o.constraint
}
