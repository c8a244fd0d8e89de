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
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig indicates GA parameters that cannot produce a run.
var ErrInvalidConfig = errors.New("algorithms: invalid configuration")

// Config holds configuration parameters for the GA driver
type Config struct {
	Generations         int
	PopulationSize      int
	SelectionRatio      float64 // share of the population drawn per pipeline iteration
	MutationProbability float64
	MutationStrategy    MutationStrategy
	Elitism             bool
	RepeatLimit         int // generations without improvement before stopping, 0 disables
	ParallelExecution   bool
	Workers             int    // 0 means runtime.NumCPU()
	Seed                uint64 // 0 picks a time-based seed
}

// DefaultConfig returns the parameters of the reference experiments.
func DefaultConfig() Config {
	return Config{
		Generations:         120,
		PopulationSize:      300,
		SelectionRatio:      0.2,
		MutationProbability: 0.25,
		MutationStrategy:    MutationBest,
		Elitism:             false,
		RepeatLimit:         3,
	}
}

// SelectionSize returns k = floor(SelectionRatio * populationSize).
func (c Config) SelectionSize(populationSize int) int {
	return int(math.Floor(c.SelectionRatio * float64(populationSize)))
}

// Validate checks the configuration. The second tournament of every
// pipeline iteration runs on the selection minus the first winner, so the
// selection must hold at least two individuals.
func (c Config) Validate() error {
	if c.Generations < 0 {
		return fmt.Errorf("%w: generations must be >= 0, got %d", ErrInvalidConfig, c.Generations)
	}
	if c.PopulationSize < 2 {
		return fmt.Errorf("%w: population size must be >= 2, got %d", ErrInvalidConfig, c.PopulationSize)
	}
	if c.SelectionRatio <= 0 || c.SelectionRatio > 1 {
		return fmt.Errorf("%w: selection ratio must be in (0,1], got %v", ErrInvalidConfig, c.SelectionRatio)
	}
	if k := c.SelectionSize(c.PopulationSize); k < 2 {
		return fmt.Errorf("%w: selection size floor(%v*%d)=%d must be >= 2", ErrInvalidConfig, c.SelectionRatio, c.PopulationSize, k)
	}
	if c.MutationProbability < 0 || c.MutationProbability > 1 {
		return fmt.Errorf("%w: mutation probability must be in [0,1], got %v", ErrInvalidConfig, c.MutationProbability)
	}
	switch c.MutationStrategy {
	case "", MutationBest, MutationRandom:
	default:
		return fmt.Errorf("%w: unknown mutation strategy %q", ErrInvalidConfig, c.MutationStrategy)
	}
	if c.RepeatLimit < 0 {
		return fmt.Errorf("%w: repeat limit must be >= 0, got %d", ErrInvalidConfig, c.RepeatLimit)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}
