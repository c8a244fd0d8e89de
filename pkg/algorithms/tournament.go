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

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// ErrEmptyInput is returned when tournament or selection receives no
// candidates. It always signals a misconfigured population or selection size.
var ErrEmptyInput = errors.New("algorithms: empty input")

// Evaluator scores a partition. Implementations must be deterministic and
// safe for concurrent use; constraints.Oracle is the production one.
type Evaluator interface {
	Evaluate(p framework.Partition) framework.Fitness
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(p framework.Partition) framework.Fitness

// Evaluate calls f(p).
func (f EvaluatorFunc) Evaluate(p framework.Partition) framework.Fitness {
	return f(p)
}

// Tournament returns the participant with the best fitness. Ties go to the
// earliest participant.
func Tournament(participants []framework.Partition, eval Evaluator) (framework.Partition, error) {
	idx, _, err := TournamentIndex(participants, eval)
	if err != nil {
		return nil, err
	}
	return participants[idx], nil
}

// TournamentIndex is Tournament returning the winner's position and fitness.
func TournamentIndex(participants []framework.Partition, eval Evaluator) (int, framework.Fitness, error) {
	if len(participants) == 0 {
		return -1, framework.Infeasible, ErrEmptyInput
	}

	best := 0
	bestFitness := eval.Evaluate(participants[0])
	for i := 1; i < len(participants); i++ {
		f := eval.Evaluate(participants[i])
		if f.Less(bestFitness) {
			best = i
			bestFitness = f
		}
	}
	return best, bestFitness, nil
}
