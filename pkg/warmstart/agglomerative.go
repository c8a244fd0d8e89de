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

package warmstart

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

const (
	DefaultMinWeight       = 1
	DefaultMaxWeight       = 25
	DefaultMinClusterRatio = 0.7
)

// ErrInvalidSeeding indicates a seeder configuration that cannot generate partitions.
var ErrInvalidSeeding = errors.New("warmstart: invalid seeding configuration")

// AgglomerativeConfig contains configuration for the random agglomerative seeder
type AgglomerativeConfig struct {
	Graph *framework.Graph

	// Random edge weights are drawn uniformly from [MinWeight, MaxWeight]
	// for every individual; edges are contracted in ascending weight order.
	MinWeight int
	MaxWeight int

	// The target cluster count is drawn uniformly from
	// [ceil(MinClusterRatio*n), n].
	MinClusterRatio float64

	// Constraint, when set, rejects a contraction whose merged cluster
	// violates it, so every emitted partition is feasible.
	Constraint framework.Constraint

	// IncludeSingletons puts the all-singletons partition first.
	IncludeSingletons bool

	// MaxRetries bounds the attempts at drawing an unseen partition; 0
	// means 10 attempts per requested individual.
	MaxRetries int

	Seed uint64
}

// Agglomerative builds diverse partitions by contracting graph edges in a
// random order until a random number of clusters remains.
type Agglomerative struct {
	config AgglomerativeConfig
	rng    *rand.Rand
}

// NewAgglomerative creates a seeder, filling zero fields with defaults.
func NewAgglomerative(config AgglomerativeConfig) (*Agglomerative, error) {
	if config.Graph == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInvalidSeeding)
	}
	if config.MinWeight == 0 && config.MaxWeight == 0 {
		config.MinWeight, config.MaxWeight = DefaultMinWeight, DefaultMaxWeight
	}
	if config.MinWeight > config.MaxWeight {
		return nil, fmt.Errorf("%w: weight range [%d,%d] is empty", ErrInvalidSeeding, config.MinWeight, config.MaxWeight)
	}
	if config.MinClusterRatio == 0 {
		config.MinClusterRatio = DefaultMinClusterRatio
	}
	if config.MinClusterRatio < 0 || config.MinClusterRatio > 1 {
		return nil, fmt.Errorf("%w: cluster ratio %v outside [0,1]", ErrInvalidSeeding, config.MinClusterRatio)
	}
	return &Agglomerative{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}, nil
}

// Generate returns count partitions. Duplicates are redrawn up to the retry
// bound; if the graph does not admit that many distinct partitions the batch
// is padded with copies of drawn ones.
func (a *Agglomerative) Generate(count int) ([]framework.Partition, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidSeeding, count)
	}
	n := a.config.Graph.N()

	population := make([]framework.Partition, 0, count)
	seen := make(map[string]bool, count)
	add := func(p framework.Partition) bool {
		key := p.Key()
		if seen[key] {
			return false
		}
		seen[key] = true
		population = append(population, p)
		return true
	}

	if a.config.IncludeSingletons && count > 0 {
		add(Singletons(n))
		klog.V(2).InfoS("Added all-singletons partition as baseline")
	}

	retries := a.config.MaxRetries
	if retries == 0 {
		retries = 10 * count
	}
	duplicates := 0
	for len(population) < count && duplicates <= retries {
		if !add(a.contract()) {
			duplicates++
		}
	}

	unique := len(population)
	for i := 0; len(population) < count; i++ {
		population = append(population, population[i%unique].Clone())
	}

	klog.V(2).InfoS("Generated initial population", "count", len(population), "unique", unique, "duplicatesDrawn", duplicates)
	return population, nil
}

// contract draws one partition.
func (a *Agglomerative) contract() framework.Partition {
	g := a.config.Graph
	n := g.N()
	if n == 0 {
		return framework.Partition{}
	}

	lo := int(math.Ceil(a.config.MinClusterRatio * float64(n)))
	if lo < 1 {
		lo = 1
	}
	target := lo + a.rng.Intn(n-lo+1)

	edges := g.Edges()
	weights := make([]int, len(edges))
	span := a.config.MaxWeight - a.config.MinWeight + 1
	for i := range weights {
		weights[i] = a.config.MinWeight + a.rng.Intn(span)
	}
	order := make([]int, len(edges))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] < weights[order[j]]
	})

	dsu := newDisjointSet(n)
	clusters := n
	for _, ei := range order {
		if clusters <= target {
			break
		}
		e := edges[ei]
		ru, rv := dsu.find(e.U), dsu.find(e.V)
		if ru == rv {
			continue
		}
		if a.config.Constraint != nil {
			merged := make(framework.Cluster, 0, len(dsu.members[ru])+len(dsu.members[rv]))
			merged = append(merged, dsu.members[ru]...)
			merged = append(merged, dsu.members[rv]...)
			if !a.config.Constraint(merged) {
				continue
			}
		}
		dsu.union(ru, rv)
		clusters--
	}
	return dsu.partition()
}

// Singletons returns the partition placing every vertex alone. It is always
// feasible.
func Singletons(n int) framework.Partition {
	p := make(framework.Partition, n)
	for v := range p {
		p[v] = framework.Cluster{v}
	}
	return p
}

// disjointSet is union-find with union by size; members are tracked per root.
type disjointSet struct {
	parent  []int
	members [][]int
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{parent: make([]int, n), members: make([][]int, n)}
	for v := range d.parent {
		d.parent[v] = v
		d.members[v] = []int{v}
	}
	return d
}

func (d *disjointSet) find(v int) int {
	for d.parent[v] != v {
		d.parent[v] = d.parent[d.parent[v]]
		v = d.parent[v]
	}
	return v
}

// union merges two roots.
func (d *disjointSet) union(ru, rv int) {
	if len(d.members[ru]) < len(d.members[rv]) {
		ru, rv = rv, ru
	}
	d.parent[rv] = ru
	d.members[ru] = append(d.members[ru], d.members[rv]...)
	d.members[rv] = nil
}

// partition emits clusters ordered by smallest vertex, vertices ascending.
func (d *disjointSet) partition() framework.Partition {
	index := make(map[int]int)
	var p framework.Partition
	for v := range d.parent {
		r := d.find(v)
		ci, ok := index[r]
		if !ok {
			ci = len(p)
			index[r] = ci
			p = append(p, framework.Cluster{})
		}
		p[ci] = append(p[ci], v)
	}
	return p
}
