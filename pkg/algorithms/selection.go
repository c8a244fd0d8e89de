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
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// Select draws k distinct individuals uniformly at random without
// replacement. Feasible draws go straight into the result; infeasible ones
// are deferred and appended afterwards in draw order, so feasible parents
// are preferred but the selection never comes up short.
func Select(rng *rand.Rand, population []framework.Partition, k int, eval Evaluator) ([]framework.Partition, error) {
	if k < 1 || len(population) == 0 {
		return nil, fmt.Errorf("%w: selecting %d of %d individuals", ErrEmptyInput, k, len(population))
	}
	if k > len(population) {
		return nil, fmt.Errorf("%w: selection size %d exceeds population %d", ErrInvalidConfig, k, len(population))
	}

	// partial Fisher-Yates over indices: draw-and-remove from a working copy
	remaining := make([]int, len(population))
	for i := range remaining {
		remaining[i] = i
	}

	selected := make([]framework.Partition, 0, k)
	var waitList []framework.Partition
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(remaining)-i)
		remaining[i], remaining[j] = remaining[j], remaining[i]

		candidate := population[remaining[i]]
		if eval.Evaluate(candidate).IsFeasible() {
			selected = append(selected, candidate)
		} else {
			waitList = append(waitList, candidate)
		}
	}

	for _, candidate := range waitList {
		if len(selected) == k {
			break
		}
		selected = append(selected, candidate)
	}
	return selected, nil
}
