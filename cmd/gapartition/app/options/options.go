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

// Package options provides the flags of the gapartition commands.
package options

import (
	"fmt"

	"github.com/spf13/pflag"
	logsapi "k8s.io/component-base/logs/api/v1"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/api/v1alpha1"
	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
	"github.com/mihai-snyk/gapartition/pkg/warmstart"
)

// GAOptions holds the GA parameters shared by every command. Flags override
// the configuration file, which overrides the defaults.
type GAOptions struct {
	ConfigFile string

	// flags bind here; only the ones set on the command line are applied
	flags v1alpha1.GAConfiguration
	// Config is the merged configuration, valid after Complete.
	Config *v1alpha1.GAConfiguration
}

// NewGAOptions returns options whose flag defaults match the API defaults.
func NewGAOptions() *GAOptions {
	return &GAOptions{flags: *v1alpha1.Default()}
}

// AddFlags adds the GA flags to fs.
func (o *GAOptions) AddFlags(fs *pflag.FlagSet) {
	f := &o.flags
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "Path to a GAConfiguration file (YAML or JSON).")
	fs.Int32Var(f.Generations, "generations", *f.Generations, "Maximum number of generations.")
	fs.Int32Var(&f.PopulationSize, "population", f.PopulationSize, "Number of individuals per generation.")
	fs.Float64Var(&f.SelectionRatio, "selection-ratio", f.SelectionRatio, "Share of the population drawn for each pair of parents.")
	fs.Float64Var(f.MutationProbability, "mutation", *f.MutationProbability, "Probability that a child is mutated.")
	fs.StringVar(&f.MutationStrategy, "mutation-strategy", f.MutationStrategy, "Mutation strategy: best or random.")
	fs.BoolVar(&f.Elitism, "elitism", f.Elitism, "Carry the best individual into the next generation.")
	fs.Int32Var(f.RepeatLimit, "repeat-limit", *f.RepeatLimit, "Stop after this many generations without improvement, 0 to disable.")
	fs.BoolVar(&f.ParallelExecution, "parallel", f.ParallelExecution, "Breed children on a worker pool.")
	fs.Int32Var(&f.Workers, "workers", f.Workers, "Worker pool size, 0 for one per CPU.")
	fs.Uint64Var(&f.Seed, "seed", f.Seed, "Random seed, 0 for a time-based seed.")
	fs.BoolVar(&f.Seeding.RespectBounds, "feasible-seeds", f.Seeding.RespectBounds, "Only merge clusters within the bounds when seeding.")
	fs.BoolVar(&f.Seeding.IncludeSingletons, "include-singletons", f.Seeding.IncludeSingletons, "Seed the all-singletons partition.")
	fs.StringVar(&f.Output.Results, "results", f.Output.Results, "Append \"<instance> <fitness>\" lines to this file.")
	fs.StringVar(&f.Output.Report, "report", f.Output.Report, "Write a YAML run report to this file.")
	fs.StringVar(&f.Output.PlotDir, "plot-dir", f.Output.PlotDir, "Write HTML charts to this directory.")
	fs.StringVar(&f.Output.MetricsFile, "metrics-file", f.Output.MetricsFile, "Write Prometheus metrics to this file.")
	fs.StringVar(&f.Output.OTelEndpoint, "otel-endpoint", f.Output.OTelEndpoint, "OTLP gRPC collector endpoint (host:port); tracing is off when empty.")
}

// Complete loads the configuration file and applies the flags that were
// set explicitly.
func (o *GAOptions) Complete(fs *pflag.FlagSet) error {
	cfg := v1alpha1.Default()
	if o.ConfigFile != "" {
		loaded, err := v1alpha1.Load(o.ConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	f := &o.flags
	overrides := map[string]func(){
		"generations":        func() { cfg.Generations = f.Generations },
		"population":         func() { cfg.PopulationSize = f.PopulationSize },
		"selection-ratio":    func() { cfg.SelectionRatio = f.SelectionRatio },
		"mutation":           func() { cfg.MutationProbability = f.MutationProbability },
		"mutation-strategy":  func() { cfg.MutationStrategy = f.MutationStrategy },
		"elitism":            func() { cfg.Elitism = f.Elitism },
		"repeat-limit":       func() { cfg.RepeatLimit = f.RepeatLimit },
		"parallel":           func() { cfg.ParallelExecution = f.ParallelExecution },
		"workers":            func() { cfg.Workers = f.Workers },
		"seed":               func() { cfg.Seed = f.Seed },
		"feasible-seeds":     func() { cfg.Seeding.RespectBounds = f.Seeding.RespectBounds },
		"include-singletons": func() { cfg.Seeding.IncludeSingletons = f.Seeding.IncludeSingletons },
		"results":            func() { cfg.Output.Results = f.Output.Results },
		"report":             func() { cfg.Output.Report = f.Output.Report },
		"plot-dir":           func() { cfg.Output.PlotDir = f.Output.PlotDir },
		"metrics-file":       func() { cfg.Output.MetricsFile = f.Output.MetricsFile },
		"otel-endpoint":      func() { cfg.Output.OTelEndpoint = f.Output.OTelEndpoint },
	}
	fs.Visit(func(flag *pflag.Flag) {
		if apply, ok := overrides[flag.Name]; ok {
			apply()
		}
	})

	if err := v1alpha1.ValidateGAConfiguration(cfg); err != nil {
		return err
	}
	// the GA and the seeder share one seed, reported with the results
	cfg.Seed = algorithms.ResolveSeed(cfg.Seed)
	o.Config = cfg
	return nil
}

// AlgorithmConfig converts the merged configuration for the GA driver.
func (o *GAOptions) AlgorithmConfig() algorithms.Config {
	cfg := o.Config
	return algorithms.Config{
		Generations:         int(*cfg.Generations),
		PopulationSize:      int(cfg.PopulationSize),
		SelectionRatio:      cfg.SelectionRatio,
		MutationProbability: *cfg.MutationProbability,
		MutationStrategy:    algorithms.MutationStrategy(cfg.MutationStrategy),
		Elitism:             cfg.Elitism,
		RepeatLimit:         int(*cfg.RepeatLimit),
		ParallelExecution:   cfg.ParallelExecution,
		Workers:             int(cfg.Workers),
		Seed:                cfg.Seed,
	}
}

// SeedingTemplate returns the seeder parameters that do not depend on the
// instance.
func (o *GAOptions) SeedingTemplate() warmstart.AgglomerativeConfig {
	s := o.Config.Seeding
	return warmstart.AgglomerativeConfig{
		MinWeight:         int(s.MinWeight),
		MaxWeight:         int(s.MaxWeight),
		MinClusterRatio:   s.MinClusterRatio,
		IncludeSingletons: s.IncludeSingletons,
	}
}

// SeedingConfig builds the seeder configuration for inst.
func (o *GAOptions) SeedingConfig(inst *framework.Instance, seed uint64) warmstart.AgglomerativeConfig {
	config := o.SeedingTemplate()
	config.Graph = inst.Graph
	config.Seed = seed
	if o.Config.Seeding.RespectBounds {
		config.Constraint = constraints.NewOracle(inst).Constraint()
	}
	return config
}

// RunOptions are the options of the run command.
type RunOptions struct {
	*GAOptions
	Instance string
	Explain  bool
}

// NewRunOptions returns default run options.
func NewRunOptions() *RunOptions {
	return &RunOptions{GAOptions: NewGAOptions()}
}

// AddFlags adds the run flags to fs.
func (o *RunOptions) AddFlags(fs *pflag.FlagSet) {
	o.GAOptions.AddFlags(fs)
	fs.StringVar(&o.Instance, "instance", o.Instance, "Path to the instance file.")
	fs.BoolVar(&o.Explain, "explain", o.Explain, "Print a per-cluster breakdown of the best partition.")
}

// Validate checks the run-specific flags.
func (o *RunOptions) Validate() error {
	if o.Instance == "" {
		return fmt.Errorf("--instance is required")
	}
	return nil
}

// BenchOptions are the options of the bench command.
type BenchOptions struct {
	*GAOptions
	Instances   []string
	Iterations  int
	OutputDir   string
	MaxVertices int
	MaxWeight   int64
}

// NewBenchOptions returns default bench options.
func NewBenchOptions() *BenchOptions {
	return &BenchOptions{
		GAOptions:   NewGAOptions(),
		Iterations:  1,
		MaxVertices: 100,
		MaxWeight:   10,
	}
}

// AddFlags adds the bench flags to fs.
func (o *BenchOptions) AddFlags(fs *pflag.FlagSet) {
	o.GAOptions.AddFlags(fs)
	fs.StringSliceVar(&o.Instances, "instances", o.Instances, "Instance files or directories of .dat files. When empty, random instances of the standard shapes are generated.")
	fs.IntVar(&o.Iterations, "iterations", o.Iterations, "Runs per instance.")
	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "Write per-run reports and charts to this directory.")
	fs.IntVar(&o.MaxVertices, "max-vertices", o.MaxVertices, "Largest generated instance, in vertices.")
	fs.Int64Var(&o.MaxWeight, "max-weight", o.MaxWeight, "Largest edge cost of generated instances.")
}

// Validate checks the bench-specific flags.
func (o *BenchOptions) Validate() error {
	if o.Iterations < 1 {
		return fmt.Errorf("--iterations must be at least 1, got %d", o.Iterations)
	}
	if len(o.Instances) == 0 && o.MaxWeight < 1 {
		return fmt.Errorf("--max-weight must be positive, got %d", o.MaxWeight)
	}
	return nil
}

// NewLoggingOptions returns the logging configuration shared by all commands.
func NewLoggingOptions() *logsapi.LoggingConfiguration {
	return logsapi.NewLoggingConfiguration()
}
