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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	GroupName = "gapartition"
	Version   = "v1alpha1"
	Kind      = "GAConfiguration"
)

// APIVersion is the apiVersion of configuration files.
var APIVersion = GroupName + "/" + Version

// GAConfiguration holds the parameters of a run, as read from a
// configuration file. Zero values are replaced by SetDefaults_GAConfiguration.
type GAConfiguration struct {
	metav1.TypeMeta `json:",inline"`

	// Generations is the maximum number of generations evolved. Zero only
	// evaluates the seed population.
	Generations *int32 `json:"generations,omitempty"`

	// PopulationSize is the number of individuals per generation.
	PopulationSize int32 `json:"populationSize,omitempty"`

	// SelectionRatio is the share of the population drawn for each pair of
	// parents.
	SelectionRatio float64 `json:"selectionRatio,omitempty"`

	// MutationProbability is the chance each child is mutated.
	MutationProbability *float64 `json:"mutationProbability,omitempty"`

	// MutationStrategy is "best" (hill climbing) or "random".
	MutationStrategy string `json:"mutationStrategy,omitempty"`

	// Elitism carries the best individual into the next generation.
	Elitism bool `json:"elitism,omitempty"`

	// RepeatLimit stops the run after that many generations without
	// improvement. 0 disables early stopping.
	RepeatLimit *int32 `json:"repeatLimit,omitempty"`

	// ParallelExecution breeds pairs of children on a worker pool.
	ParallelExecution bool `json:"parallelExecution,omitempty"`

	// Workers is the size of the worker pool, 0 for one per CPU.
	Workers int32 `json:"workers,omitempty"`

	// Seed makes runs reproducible. 0 picks a time-based seed.
	Seed uint64 `json:"seed,omitempty"`

	Seeding SeedingConfiguration `json:"seeding,omitempty"`
	Output  OutputConfiguration  `json:"output,omitempty"`
}

// SeedingConfiguration tunes the initial population.
type SeedingConfiguration struct {
	// MinWeight and MaxWeight bound the random edge weights of the
	// agglomerative seeder.
	MinWeight int32 `json:"minWeight,omitempty"`
	MaxWeight int32 `json:"maxWeight,omitempty"`

	// MinClusterRatio sets the smallest cluster count of a seed to
	// ceil(MinClusterRatio * n).
	MinClusterRatio float64 `json:"minClusterRatio,omitempty"`

	// RespectBounds refuses merges that break D or T, so seeds are feasible.
	RespectBounds bool `json:"respectBounds,omitempty"`

	// IncludeSingletons adds the all-singletons partition to the population.
	IncludeSingletons bool `json:"includeSingletons,omitempty"`
}

// OutputConfiguration lists the optional result sinks.
type OutputConfiguration struct {
	Results      string `json:"results,omitempty"`
	Report       string `json:"report,omitempty"`
	PlotDir      string `json:"plotDir,omitempty"`
	MetricsFile  string `json:"metricsFile,omitempty"`
	OTelEndpoint string `json:"otelEndpoint,omitempty"`
}
