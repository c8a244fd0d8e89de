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

package benchmarks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
	"github.com/mihai-snyk/gapartition/pkg/util"
	"github.com/mihai-snyk/gapartition/pkg/warmstart"
)

// SuiteConfig contains the experiment parameters shared by every instance.
type SuiteConfig struct {
	GA         algorithms.Config
	Iterations int

	// Seeding is the seeder template; Graph, Constraint and Seed are filled
	// per run.
	Seeding warmstart.AgglomerativeConfig

	// RespectBounds restricts seeding merges to the instance bounds.
	RespectBounds bool

	// Results, when set, receives one "<instance> <fitness>" line per run.
	Results *util.ResultWriter

	// OutputDir, when set, receives a YAML report and a convergence chart per run.
	OutputDir string

	// NewObserver, when set, builds the progress observer of each run.
	NewObserver func(inst *framework.Instance) (algorithms.Observer, error)

	// AfterRun, when set, is called with the outcome of every GA run,
	// including failed ones.
	AfterRun func(inst *framework.Instance, result *algorithms.Result, err error)
}

// Outcome is the result of one run of the suite.
type Outcome struct {
	Instance       string
	Iteration      int
	Fitness        framework.Fitness
	LastGeneration int
	Elapsed        time.Duration
}

// Suite runs the GA over a set of instances
type Suite struct {
	instances []*framework.Instance
	config    SuiteConfig
}

// NewSuite creates a new suite
func NewSuite(config SuiteConfig) *Suite {
	if config.Iterations < 1 {
		config.Iterations = 1
	}
	return &Suite{config: config}
}

// AddInstance adds an instance to the suite
func (s *Suite) AddInstance(inst *framework.Instance) {
	s.instances = append(s.instances, inst)
}

// Instances returns the instances in run order.
func (s *Suite) Instances() []*framework.Instance {
	return s.instances
}

// Run executes every iteration on every instance, in order. Seeds are
// derived from the GA seed, the instance position and the iteration so that
// a fixed seed reproduces the whole suite. A zero GA seed is resolved once
// per call.
func (s *Suite) Run(ctx context.Context) ([]Outcome, error) {
	logger := klog.FromContext(ctx)
	seed := algorithms.ResolveSeed(s.config.GA.Seed)
	logger.V(1).Info("Suite seed", "seed", seed)

	if s.config.OutputDir != "" {
		if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := s.results(func(w *util.ResultWriter) error { return w.Separator() }); err != nil {
		return nil, err
	}

	var outcomes []Outcome
	for i, inst := range s.instances {
		logger.Info("Running GA", "instance", inst.Name, "vertices", inst.Graph.N(), "maxCost", inst.MaxCost, "maxSize", inst.MaxSize, "iterations", s.config.Iterations)
		if err := s.results(func(w *util.ResultWriter) error { return w.Header() }); err != nil {
			return outcomes, err
		}

		for it := 0; it < s.config.Iterations; it++ {
			outcome, err := s.runOnce(ctx, inst, seed, i, it)
			if err != nil {
				return outcomes, fmt.Errorf("%s iteration %d: %w", inst.Name, it+1, err)
			}
			outcomes = append(outcomes, outcome)
			logger.Info("Run complete", "instance", inst.Name, "iteration", it+1, "fitness", outcome.Fitness, "lastGeneration", outcome.LastGeneration, "elapsed", outcome.Elapsed)

			if err := s.results(func(w *util.ResultWriter) error { return w.Append(inst.Name, outcome.Fitness) }); err != nil {
				return outcomes, err
			}
		}

		if err := s.results(func(w *util.ResultWriter) error { return w.Separator() }); err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

func (s *Suite) runOnce(ctx context.Context, inst *framework.Instance, seed uint64, index, iteration int) (Outcome, error) {
	config := s.config.GA
	config.Seed = seed + uint64(index)*1_000_003 + uint64(iteration)
	if config.Seed == 0 {
		config.Seed = 1
	}

	seeding := s.config.Seeding
	seeding.Graph = inst.Graph
	seeding.Seed = config.Seed
	if s.config.RespectBounds {
		seeding.Constraint = constraints.NewOracle(inst).Constraint()
	}
	seeder, err := warmstart.NewAgglomerative(seeding)
	if err != nil {
		return Outcome{}, err
	}

	var opts []algorithms.Option
	if s.config.NewObserver != nil {
		observer, err := s.config.NewObserver(inst)
		if err != nil {
			return Outcome{}, err
		}
		opts = append(opts, algorithms.WithObserver(observer))
	}

	ga, err := algorithms.NewGA(config, inst, seeder, opts...)
	if err != nil {
		return Outcome{}, err
	}
	result, err := ga.Run(ctx)
	if s.config.AfterRun != nil {
		s.config.AfterRun(inst, result, err)
	}
	if err != nil {
		return Outcome{}, err
	}

	if s.config.OutputDir != "" {
		base := filepath.Join(s.config.OutputDir, fmt.Sprintf("%s_run%d", inst.Name, iteration+1))
		if err := util.WriteReport(base+".yaml", util.NewRunReport(inst, config, result)); err != nil {
			return Outcome{}, err
		}
		if len(result.History) > 0 {
			err := util.RenderToFile(base+"_convergence.html", func(w io.Writer) error {
				return util.PlotConvergence(w, result.History, inst.Name)
			})
			if err != nil {
				klog.FromContext(ctx).Error(err, "Failed to plot convergence", "instance", inst.Name)
			}
		}
	}

	return Outcome{
		Instance:       inst.Name,
		Iteration:      iteration + 1,
		Fitness:        result.Fitness,
		LastGeneration: result.LastGeneration,
		Elapsed:        result.Timings.Total(),
	}, nil
}

func (s *Suite) results(write func(*util.ResultWriter) error) error {
	if s.config.Results == nil {
		return nil
	}
	return write(s.config.Results)
}
