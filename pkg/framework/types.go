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

package framework

import (
	"errors"
	"fmt"
	"strconv"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Cluster is one block of a partition. Vertex order is insertion order and
// carries no meaning beyond reproducible traversal.
type Cluster []int

// Clone returns an independent copy of the cluster.
func (c Cluster) Clone() Cluster {
	out := make(Cluster, len(c))
	copy(out, c)
	return out
}

// Contains reports whether v is a member of the cluster.
func (c Cluster) Contains(v int) bool {
	for _, u := range c {
		if u == v {
			return true
		}
	}
	return false
}

// Partition is a candidate solution: every vertex of the graph assigned to
// exactly one non-empty cluster. Partitions are treated as values; operators
// clone before modifying since parents stay referenced by the population.
type Partition []Cluster

// Clone deep-copies the partition.
func (p Partition) Clone() Partition {
	out := make(Partition, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}

// IndexOf returns the index of the cluster holding v, or -1.
func (p Partition) IndexOf(v int) int {
	for i, c := range p {
		if c.Contains(v) {
			return i
		}
	}
	return -1
}

// Assignment maps every vertex to the index of its cluster. Vertices not
// present in the partition map to -1.
func (p Partition) Assignment(n int) []int {
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	for ci, c := range p {
		for _, v := range c {
			if v >= 0 && v < n {
				assign[v] = ci
			}
		}
	}
	return assign
}

// Key returns an order-sensitive identity used to detect duplicate
// individuals in a batch.
func (p Partition) Key() string {
	return fmt.Sprintf("%v", p)
}

// Validate checks that p covers every vertex in [0, n) exactly once and
// holds no empty cluster.
func (p Partition) Validate(n int) error {
	seen := sets.New[int]()
	for ci, c := range p {
		if len(c) == 0 {
			return fmt.Errorf("%w: cluster %d is empty", ErrInvalidPartition, ci)
		}
		for _, v := range c {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: cluster %d holds vertex %d outside [0,%d)", ErrInvalidPartition, ci, v, n)
			}
			if seen.Has(v) {
				return fmt.Errorf("%w: vertex %d assigned more than once", ErrInvalidPartition, v)
			}
			seen.Insert(v)
		}
	}
	if seen.Len() != n {
		return fmt.Errorf("%w: %d of %d vertices assigned", ErrInvalidPartition, seen.Len(), n)
	}
	return nil
}

// Fitness is the cluster count of a feasible partition or the infeasible
// sentinel. All infeasible values compare equal and greater than every
// feasible value. The zero value is Infeasible.
type Fitness struct {
	clusters int
	feasible bool
}

// Infeasible is the fitness of a partition violating a constraint.
var Infeasible = Fitness{}

// Feasible returns the fitness of a feasible partition with the given
// number of clusters.
func Feasible(clusters int) Fitness {
	return Fitness{clusters: clusters, feasible: true}
}

// IsFeasible reports whether f is a feasible value.
func (f Fitness) IsFeasible() bool {
	return f.feasible
}

// Clusters returns the cluster count and whether the value is feasible.
func (f Fitness) Clusters() (int, bool) {
	return f.clusters, f.feasible
}

// Less reports whether f is strictly better than o.
func (f Fitness) Less(o Fitness) bool {
	if !f.feasible {
		return false
	}
	if !o.feasible {
		return true
	}
	return f.clusters < o.clusters
}

func (f Fitness) String() string {
	if !f.feasible {
		return "inf"
	}
	return strconv.Itoa(f.clusters)
}

// MarshalJSON renders feasible values as numbers and the sentinel as "inf".
func (f Fitness) MarshalJSON() ([]byte, error) {
	if !f.feasible {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.Itoa(f.clusters)), nil
}

// Constraint is a per-cluster feasibility predicate.
type Constraint func(c Cluster) bool

// ErrInvalidInstance indicates bounds or a graph that cannot form a problem instance.
var ErrInvalidInstance = errors.New("framework: invalid instance")

// Instance bundles the immutable graph with the run's bounds: MaxCost (D)
// on the spanning cost of a cluster and MaxSize (T) on its cardinality.
type Instance struct {
	Name    string
	Graph   *Graph
	MaxCost int64
	MaxSize int
}

// NewInstance validates the bounds and returns an instance.
func NewInstance(name string, g *Graph, maxCost int64, maxSize int) (*Instance, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInvalidInstance)
	}
	if maxCost < 0 {
		return nil, fmt.Errorf("%w: max cost %d is negative", ErrInvalidInstance, maxCost)
	}
	if maxSize < 1 {
		return nil, fmt.Errorf("%w: max size %d must be at least 1", ErrInvalidInstance, maxSize)
	}
	return &Instance{Name: name, Graph: g, MaxCost: maxCost, MaxSize: maxSize}, nil
}
